package domain

// Operation is the pipeline strategy chosen by the routing oracle.
type Operation string

const (
	// OpDirectStructured answers from structured records only.
	OpDirectStructured Operation = "direct_structured"
	// OpSemantic answers from retrieval snippets only.
	OpSemantic Operation = "semantic"
	// OpCombined runs retrieval first and resolution second.
	OpCombined Operation = "combined"
)

// EntityKind selects the primary collection for retrieval and the resolver's
// result shape.
type EntityKind string

const (
	EntityHospitals     EntityKind = "hospitals"
	EntityDoctors       EntityKind = "doctors"
	EntitySpecialties   EntityKind = "specialties"
	EntityAreas         EntityKind = "areas"
	EntityCities        EntityKind = "cities"
	EntityRelationships EntityKind = "relationships"
)

// QueryType names the structured question shape the resolver handles. The set
// mirrors the routing oracle's vocabulary.
type QueryType string

const (
	QueryDoctorsAtHospital     QueryType = "doctorsAtHospital"
	QueryHospitalsForDoctor    QueryType = "hospitalsForDoctor"
	QuerySpecialistsAtHospital QueryType = "specialistsAtHospital"
	QuerySpecialtiesAtHospital QueryType = "specialtiesAtHospital"
	QuerySpecialtiesForDoctor  QueryType = "specialtiesForDoctor"
	QueryCompareDoctors        QueryType = "specialtiesComparison"
	QueryAllDoctors            QueryType = "allDoctors"
	QueryAllHospitals          QueryType = "allHospitals"
	QueryAllSpecialties        QueryType = "allSpecialties"
	QueryAllCities             QueryType = "allCities"
	QueryAllAreas              QueryType = "allAreas"
	QueryDoctorAppointments    QueryType = "doctorAppointments"
	QueryCheckDoctorAtHospital QueryType = "checkDoctorAtHospital"
	QueryCheckDoctorSpecialty  QueryType = "checkDoctorSpecialty"
)

// FilterBag carries the named constraints extracted for one question. Empty
// string means the constraint is absent; IsOnline nil means both modes.
type FilterBag struct {
	QueryType         QueryType `json:"query_type,omitempty"`
	HospitalName      string    `json:"hospital_name,omitempty"`
	Location          string    `json:"location,omitempty"`
	SpecialtyName     string    `json:"specialty_name,omitempty"`
	DoctorName        string    `json:"doctor_name,omitempty"`
	Doctor2Name       string    `json:"doctor2_name,omitempty"`
	Gender            string    `json:"gender,omitempty"`
	ExcludeDoctorName string    `json:"exclude_doctor_name,omitempty"`
	IsOnline          *bool     `json:"is_online,omitempty"`
}

// Named reports whether any entity-naming constraint is present. A bag with
// only gender or mode constraints still lists broadly.
func (f FilterBag) Named() bool {
	return f.HospitalName != "" || f.SpecialtyName != "" || f.DoctorName != "" || f.Doctor2Name != ""
}

// ListAll reports whether the query type enumerates a whole collection.
func (f FilterBag) ListAll() bool {
	switch f.QueryType {
	case QueryAllDoctors, QueryAllHospitals, QueryAllSpecialties, QueryAllCities, QueryAllAreas:
		return true
	}
	return false
}

// RouteDecision is the routing oracle's verdict for one question.
type RouteDecision struct {
	Operation Operation  `json:"operation"`
	Entity    EntityKind `json:"entity"`
	Params    FilterBag  `json:"params"`
}

// DefaultRoute is the fallback applied when the routing oracle returns
// non-conforming output: semantic search over the hospital collection.
func DefaultRoute() RouteDecision {
	return RouteDecision{Operation: OpSemantic, Entity: EntityHospitals}
}

// ContextSource records which stage produced the answer context.
type ContextSource string

const (
	SourceStructured ContextSource = "structured"
	SourceEnrichment ContextSource = "enrichment"
	SourceSnippets   ContextSource = "snippets"
	SourceNone       ContextSource = "none"
)

// GroundedAnswer is the pipeline's terminal state.
type GroundedAnswer struct {
	Text          string            `json:"answer"`
	ContextSource ContextSource     `json:"context_source"`
	Records       []RetrievalRecord `json:"records,omitempty"`
	Route         RouteDecision     `json:"route"`
}

// EntityCandidate is a single value proposed by the extraction oracle during
// enrichment, before validation against the original question.
type EntityCandidate struct {
	Kind      EntityKind `json:"kind"`
	Value     string     `json:"value"`
	Original  string     `json:"original,omitempty"`
	Relevance string     `json:"relevance,omitempty"`
}
