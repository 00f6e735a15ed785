package domain

// Directory entities are owned by the structured store and read-only to this
// service; ingestion and editing happen in external systems.

type Hospital struct {
	UID         string `json:"uid"`
	NameEn      string `json:"name_en"`
	NameAr      string `json:"name_ar"`
	AddressEn   string `json:"address_en,omitempty"`
	AddressAr   string `json:"address_ar,omitempty"`
	Location    string `json:"location,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	AreaID      string `json:"area_id,omitempty"`
}

type Doctor struct {
	UID              string  `json:"uid"`
	FullName         string  `json:"fullname"`
	FullNameAr       string  `json:"fullname_ar"`
	Title            string  `json:"title,omitempty"`
	PositionEn       string  `json:"position_en,omitempty"`
	PositionAr       string  `json:"position_ar,omitempty"`
	QualificationsEn string  `json:"qualifications_en,omitempty"`
	QualificationsAr string  `json:"qualifications_ar,omitempty"`
	Gender           string  `json:"gender,omitempty"`
	YearsExperience  int     `json:"years_experience,omitempty"`
	Rating           float64 `json:"rating,omitempty"`
}

type Specialty struct {
	ID     string `json:"id"`
	NameEn string `json:"name_en"`
	NameAr string `json:"name_ar"`
}

type Area struct {
	ID     string `json:"id"`
	NameEn string `json:"name_en"`
	NameAr string `json:"name_ar"`
	CityID string `json:"city_id,omitempty"`
}

type City struct {
	ID     string `json:"id"`
	NameEn string `json:"name_en"`
	NameAr string `json:"name_ar"`
}

// Link is one row of the hospital-doctor-specialty relation. Any reference may
// be absent; a link with all three absent carries no information and is treated
// as non-matching.
type Link struct {
	ID          string `json:"id"`
	HospitalUID string `json:"hospital_uid,omitempty"`
	DoctorUID   string `json:"doctor_uid,omitempty"`
	SpecialtyID string `json:"specialty_id,omitempty"`

	Hospital  *Hospital  `json:"hospital,omitempty"`
	Doctor    *Doctor    `json:"doctor,omitempty"`
	Specialty *Specialty `json:"specialty,omitempty"`
}

func (l Link) Empty() bool {
	return l.HospitalUID == "" && l.DoctorUID == "" && l.SpecialtyID == ""
}
