package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
	"github.com/hazemfarouk/meddir-assistant/internal/core/ports"
)

const defaultListLimit = 100

// DirectoryRepository implements ports.DirectoryStore on Postgres.
type DirectoryRepository struct {
	db *sql.DB
}

func NewDirectoryRepository(db *sql.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

const hospitalColumns = `uid, name_en, name_ar, COALESCE(address_en, ''), COALESCE(address_ar, ''), COALESCE(location, ''), COALESCE(type, ''), COALESCE(description, ''), COALESCE(area_id, '')`

func (r *DirectoryRepository) FindHospitals(ctx context.Context, name, location string, limit int) ([]domain.Hospital, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	clauses := []string{"is_deleted = FALSE"}
	args := []any{}
	if strings.TrimSpace(name) != "" {
		args = append(args, "%"+strings.TrimSpace(name)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(name_en ILIKE $%d OR name_ar ILIKE $%d)", n, n))
	}
	if strings.TrimSpace(location) != "" {
		args = append(args, "%"+strings.TrimSpace(location)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(address_en ILIKE $%d OR address_ar ILIKE $%d OR location ILIKE $%d)", n, n, n))
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT %s FROM hospitals WHERE %s ORDER BY name_en LIMIT $%d`,
		hospitalColumns, strings.Join(clauses, " AND "), len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find hospitals: %w", err)
	}
	defer rows.Close()
	return scanHospitals(rows)
}

func (r *DirectoryRepository) ListHospitals(ctx context.Context, limit int) ([]domain.Hospital, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := fmt.Sprintf(
		`SELECT %s FROM hospitals WHERE is_deleted = FALSE ORDER BY name_en LIMIT $1`,
		hospitalColumns,
	)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list hospitals: %w", err)
	}
	defer rows.Close()
	return scanHospitals(rows)
}

func (r *DirectoryRepository) FindSpecialties(ctx context.Context, name string, limit int) ([]domain.Specialty, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	const query = `SELECT id, name_en, name_ar FROM specialties
WHERE is_deleted = FALSE AND (name_en ILIKE $1 OR name_ar ILIKE $1)
ORDER BY name_en LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, "%"+strings.TrimSpace(name)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("find specialties: %w", err)
	}
	defer rows.Close()
	return scanSpecialties(rows)
}

func (r *DirectoryRepository) ListSpecialties(ctx context.Context, limit int) ([]domain.Specialty, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	const query = `SELECT id, name_en, name_ar FROM specialties
WHERE is_deleted = FALSE ORDER BY name_en LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list specialties: %w", err)
	}
	defer rows.Close()
	return scanSpecialties(rows)
}

const doctorColumns = `uid, fullname, fullname_ar, COALESCE(title, ''), COALESCE(position_en, ''), COALESCE(position_ar, ''), COALESCE(qualifications_en, ''), COALESCE(qualifications_ar, ''), COALESCE(gender, ''), years_experience, rating`

func (r *DirectoryRepository) FindDoctorsByName(ctx context.Context, name string, limit int) ([]domain.Doctor, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := fmt.Sprintf(
		`SELECT %s FROM doctors
WHERE is_deleted = FALSE AND (fullname ILIKE $1 OR fullname_ar ILIKE $1)
ORDER BY fullname LIMIT $2`,
		doctorColumns,
	)

	rows, err := r.db.QueryContext(ctx, query, "%"+strings.TrimSpace(name)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("find doctors by name: %w", err)
	}
	defer rows.Close()
	return scanDoctors(rows)
}

func (r *DirectoryRepository) FindDoctorsByGender(ctx context.Context, gender string, limit int) ([]domain.Doctor, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := fmt.Sprintf(
		`SELECT %s FROM doctors
WHERE is_deleted = FALSE AND LOWER(gender) = LOWER($1)
ORDER BY fullname LIMIT $2`,
		doctorColumns,
	)

	rows, err := r.db.QueryContext(ctx, query, strings.TrimSpace(gender), limit)
	if err != nil {
		return nil, fmt.Errorf("find doctors by gender: %w", err)
	}
	defer rows.Close()
	return scanDoctors(rows)
}

func (r *DirectoryRepository) ListDoctors(ctx context.Context, limit int) ([]domain.Doctor, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := fmt.Sprintf(
		`SELECT %s FROM doctors WHERE is_deleted = FALSE ORDER BY fullname LIMIT $1`,
		doctorColumns,
	)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()
	return scanDoctors(rows)
}

// FindLinks returns relation rows matching every non-empty filter slice, with
// referenced hospital/doctor/specialty rows joined in when present.
func (r *DirectoryRepository) FindLinks(ctx context.Context, filter ports.LinkFilter) ([]domain.Link, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	clauses := []string{"l.is_deleted = FALSE"}
	args := []any{}
	appendIn := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		start := len(args) + 1
		for _, v := range values {
			args = append(args, v)
		}
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", column, placeholders(start, len(values))))
	}
	appendIn("l.hospital_uid", filter.HospitalUIDs)
	appendIn("l.doctor_uid", filter.DoctorUIDs)
	appendIn("l.specialty_id", filter.SpecialtyIDs)
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT
	l.id, COALESCE(l.hospital_uid, ''), COALESCE(l.doctor_uid, ''), COALESCE(l.specialty_id, ''),
	h.uid, h.name_en, h.name_ar, h.address_en, h.address_ar, h.location, h.type, h.area_id,
	d.uid, d.fullname, d.fullname_ar, d.title, d.gender,
	s.id, s.name_en, s.name_ar
FROM hospital_doctor_specialty l
LEFT JOIN hospitals h ON h.uid = l.hospital_uid AND h.is_deleted = FALSE
LEFT JOIN doctors d ON d.uid = l.doctor_uid AND d.is_deleted = FALSE
LEFT JOIN specialties s ON s.id = l.specialty_id AND s.is_deleted = FALSE
WHERE %s
ORDER BY l.id
LIMIT $%d`, strings.Join(clauses, " AND "), len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find links: %w", err)
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var (
			link domain.Link

			hUID, hNameEn, hNameAr, hAddrEn, hAddrAr, hLocation, hType, hAreaID sql.NullString
			dUID, dFullName, dFullNameAr, dTitle, dGender                       sql.NullString
			sID, sNameEn, sNameAr                                               sql.NullString
		)
		if err := rows.Scan(
			&link.ID, &link.HospitalUID, &link.DoctorUID, &link.SpecialtyID,
			&hUID, &hNameEn, &hNameAr, &hAddrEn, &hAddrAr, &hLocation, &hType, &hAreaID,
			&dUID, &dFullName, &dFullNameAr, &dTitle, &dGender,
			&sID, &sNameEn, &sNameAr,
		); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}

		if hUID.Valid {
			link.Hospital = &domain.Hospital{
				UID:       hUID.String,
				NameEn:    hNameEn.String,
				NameAr:    hNameAr.String,
				AddressEn: hAddrEn.String,
				AddressAr: hAddrAr.String,
				Location:  hLocation.String,
				Type:      hType.String,
				AreaID:    hAreaID.String,
			}
		}
		if dUID.Valid {
			link.Doctor = &domain.Doctor{
				UID:        dUID.String,
				FullName:   dFullName.String,
				FullNameAr: dFullNameAr.String,
				Title:      dTitle.String,
				Gender:     dGender.String,
			}
		}
		if sID.Valid {
			link.Specialty = &domain.Specialty{
				ID:     sID.String,
				NameEn: sNameEn.String,
				NameAr: sNameAr.String,
			}
		}

		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return links, nil
}

func (r *DirectoryRepository) GetArea(ctx context.Context, id string) (*domain.Area, error) {
	const query = `SELECT id, name_en, name_ar, COALESCE(city_id, '') FROM areas WHERE id = $1`

	var area domain.Area
	err := r.db.QueryRowContext(ctx, query, id).Scan(&area.ID, &area.NameEn, &area.NameAr, &area.CityID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get area: %w", err)
	}
	return &area, nil
}

func (r *DirectoryRepository) GetCity(ctx context.Context, id string) (*domain.City, error) {
	const query = `SELECT id, name_en, name_ar FROM cities WHERE id = $1`

	var city domain.City
	err := r.db.QueryRowContext(ctx, query, id).Scan(&city.ID, &city.NameEn, &city.NameAr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get city: %w", err)
	}
	return &city, nil
}

func (r *DirectoryRepository) ListAreas(ctx context.Context, limit int) ([]domain.Area, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	const query = `SELECT id, name_en, name_ar, COALESCE(city_id, '') FROM areas ORDER BY name_en LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	var areas []domain.Area
	for rows.Next() {
		var area domain.Area
		if err := rows.Scan(&area.ID, &area.NameEn, &area.NameAr, &area.CityID); err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}
		areas = append(areas, area)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate areas: %w", err)
	}
	return areas, nil
}

func (r *DirectoryRepository) ListCities(ctx context.Context, limit int) ([]domain.City, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	const query = `SELECT id, name_en, name_ar FROM cities ORDER BY name_en LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		var city domain.City
		if err := rows.Scan(&city.ID, &city.NameEn, &city.NameAr); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cities: %w", err)
	}
	return cities, nil
}

func scanHospitals(rows *sql.Rows) ([]domain.Hospital, error) {
	var hospitals []domain.Hospital
	for rows.Next() {
		var h domain.Hospital
		if err := rows.Scan(
			&h.UID, &h.NameEn, &h.NameAr,
			&h.AddressEn, &h.AddressAr, &h.Location,
			&h.Type, &h.Description, &h.AreaID,
		); err != nil {
			return nil, fmt.Errorf("scan hospital: %w", err)
		}
		hospitals = append(hospitals, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hospitals: %w", err)
	}
	return hospitals, nil
}

func scanSpecialties(rows *sql.Rows) ([]domain.Specialty, error) {
	var specialties []domain.Specialty
	for rows.Next() {
		var s domain.Specialty
		if err := rows.Scan(&s.ID, &s.NameEn, &s.NameAr); err != nil {
			return nil, fmt.Errorf("scan specialty: %w", err)
		}
		specialties = append(specialties, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate specialties: %w", err)
	}
	return specialties, nil
}

func scanDoctors(rows *sql.Rows) ([]domain.Doctor, error) {
	var doctors []domain.Doctor
	for rows.Next() {
		var d domain.Doctor
		if err := rows.Scan(
			&d.UID, &d.FullName, &d.FullNameAr,
			&d.Title, &d.PositionEn, &d.PositionAr,
			&d.QualificationsEn, &d.QualificationsAr,
			&d.Gender, &d.YearsExperience, &d.Rating,
		); err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctors: %w", err)
	}
	return doctors, nil
}
