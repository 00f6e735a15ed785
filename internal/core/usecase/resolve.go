package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
	"github.com/hazemfarouk/meddir-assistant/internal/core/ports"
	"github.com/hazemfarouk/meddir-assistant/internal/textnorm"
)

const (
	linkQueryLimit = 25
	broadenedLimit = 100
	listAllLimit   = 100
	candidateLimit = 25
	unknownMarker  = "Unknown"
	blockSeparator = "____________________________________________________________________________________________________"
)

// RelationshipResolver turns a filter bag into formatted structured-fact
// blocks by joining the hospital-doctor-specialty link table. Named filters
// that resolve to zero entities short-circuit to an empty result so an
// unresolved name never falls through to an unfiltered query.
type RelationshipResolver struct {
	directory    ports.DirectoryStore
	availability *AvailabilityEngine
	logger       *slog.Logger
}

func NewRelationshipResolver(directory ports.DirectoryStore, availability *AvailabilityEngine, logger *slog.Logger) *RelationshipResolver {
	return &RelationshipResolver{
		directory:    directory,
		availability: availability,
		logger:       logger,
	}
}

// Resolve returns one formatted context block per matched record. An empty
// slice with a nil error is the no-match outcome; callers fall back to
// semantic context.
func (r *RelationshipResolver) Resolve(ctx context.Context, bag domain.FilterBag) ([]string, error) {
	// A doctor list constrained by specialty is really a specialist lookup.
	if bag.QueryType == domain.QueryAllDoctors && bag.SpecialtyName != "" {
		bag.QueryType = domain.QuerySpecialistsAtHospital
	}

	switch bag.QueryType {
	case domain.QueryAllDoctors:
		return r.listDoctors(ctx)
	case domain.QueryAllHospitals:
		return r.listHospitals(ctx)
	case domain.QueryAllSpecialties:
		return r.listSpecialties(ctx)
	case domain.QueryAllCities:
		return r.listCities(ctx)
	case domain.QueryAllAreas:
		return r.listAreas(ctx)
	case domain.QueryDoctorAppointments:
		return r.resolveAppointments(ctx, bag)
	case domain.QueryCheckDoctorAtHospital:
		return r.verifyDoctorAtHospital(ctx, bag)
	case domain.QueryCheckDoctorSpecialty:
		return r.verifyDoctorSpecialty(ctx, bag)
	case domain.QueryCompareDoctors:
		return r.compareDoctors(ctx, bag)
	case domain.QueryDoctorsAtHospital, domain.QueryHospitalsForDoctor,
		domain.QuerySpecialistsAtHospital, domain.QuerySpecialtiesAtHospital,
		domain.QuerySpecialtiesForDoctor:
		return r.resolveLinks(ctx, bag)
	default:
		r.logger.Warn("unrecognized query type", "query_type", string(bag.QueryType))
		return nil, nil
	}
}

// candidateSets holds the per-filter entity resolutions feeding the link
// query. A nil slice means the filter was absent; an empty non-nil slice
// means the filter was present and matched nothing.
type candidateSets struct {
	hospitals   []domain.Hospital
	specialties []domain.Specialty
	doctors     []domain.Doctor
	excluded    []domain.Doctor

	hospitalErr  error
	specialtyErr error
	doctorErr    error
}

func (r *RelationshipResolver) resolveCandidates(ctx context.Context, bag domain.FilterBag) (*candidateSets, error) {
	sets := &candidateSets{}
	var wg sync.WaitGroup

	if bag.HospitalName != "" || bag.Location != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := textnorm.CleanTerm(bag.HospitalName)
			hospitals, err := r.directory.FindHospitals(ctx, name, bag.Location, candidateLimit)
			if err != nil {
				sets.hospitalErr = err
				return
			}
			if hospitals == nil {
				hospitals = []domain.Hospital{}
			}
			sets.hospitals = hospitals
		}()
	}

	if bag.SpecialtyName != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			specialties, err := r.directory.FindSpecialties(ctx, textnorm.CleanTerm(bag.SpecialtyName), candidateLimit)
			if err != nil {
				sets.specialtyErr = err
				return
			}
			if specialties == nil {
				specialties = []domain.Specialty{}
			}
			sets.specialties = specialties
		}()
	}

	if bag.DoctorName != "" || bag.Gender != "" || bag.ExcludeDoctorName != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sets.doctors, sets.excluded, sets.doctorErr = r.resolveDoctorCandidates(ctx, bag)
		}()
	}

	wg.Wait()

	if sets.hospitalErr != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "resolve hospital candidates", sets.hospitalErr)
	}
	if sets.specialtyErr != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "resolve specialty candidates", sets.specialtyErr)
	}
	if sets.doctorErr != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "resolve doctor candidates", sets.doctorErr)
	}
	return sets, nil
}

// resolveDoctorCandidates combines the name and gender filters by
// intersection and resolves the exclusion list.
func (r *RelationshipResolver) resolveDoctorCandidates(ctx context.Context, bag domain.FilterBag) (doctors, excluded []domain.Doctor, err error) {
	if bag.DoctorName != "" {
		doctors, err = r.directory.FindDoctorsByName(ctx, textnorm.CleanTerm(bag.DoctorName), candidateLimit)
		if err != nil {
			return nil, nil, err
		}
		if doctors == nil {
			doctors = []domain.Doctor{}
		}
	}

	if bag.Gender != "" {
		byGender, gerr := r.directory.FindDoctorsByGender(ctx, bag.Gender, broadenedLimit)
		if gerr != nil {
			return nil, nil, gerr
		}
		if doctors == nil {
			doctors = byGender
			if doctors == nil {
				doctors = []domain.Doctor{}
			}
		} else {
			genderUIDs := doctorUIDSet(byGender)
			kept := doctors[:0]
			for _, d := range doctors {
				if _, ok := genderUIDs[d.UID]; ok {
					kept = append(kept, d)
				}
			}
			doctors = kept
		}
	}

	if bag.ExcludeDoctorName != "" {
		excluded, err = r.directory.FindDoctorsByName(ctx, textnorm.CleanTerm(bag.ExcludeDoctorName), candidateLimit)
		if err != nil {
			return nil, nil, err
		}
		if doctors != nil {
			excludedUIDs := doctorUIDSet(excluded)
			kept := doctors[:0]
			for _, d := range doctors {
				if _, ok := excludedUIDs[d.UID]; !ok {
					kept = append(kept, d)
				}
			}
			doctors = kept
		}
	}
	return doctors, excluded, nil
}

func (r *RelationshipResolver) resolveLinks(ctx context.Context, bag domain.FilterBag) ([]string, error) {
	sets, err := r.resolveCandidates(ctx, bag)
	if err != nil {
		return nil, err
	}

	// Zero-match short-circuit: a present filter matching nothing means the
	// whole resolution is empty, never an unfiltered link scan.
	if sets.hospitals != nil && len(sets.hospitals) == 0 {
		return nil, nil
	}
	if sets.specialties != nil && len(sets.specialties) == 0 {
		return nil, nil
	}
	if sets.doctors != nil && len(sets.doctors) == 0 {
		return nil, nil
	}

	filter := ports.LinkFilter{
		HospitalUIDs: hospitalUIDs(sets.hospitals),
		DoctorUIDs:   doctorUIDs(sets.doctors),
		SpecialtyIDs: specialtyIDs(sets.specialties),
		Limit:        linkQueryLimit,
	}

	links, err := r.directory.FindLinks(ctx, filter)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "query links", err)
	}

	// Broadening fallback: foreign keys in the link table are inconsistently
	// populated, so a starved conjunction retries without the hospital
	// constraint at a larger cap.
	if len(links) == 0 && len(filter.HospitalUIDs) > 0 && (len(filter.DoctorUIDs) > 0 || len(filter.SpecialtyIDs) > 0) {
		r.logger.Info("broadening starved link query", "query_type", string(bag.QueryType))
		broadened := ports.LinkFilter{
			DoctorUIDs:   filter.DoctorUIDs,
			SpecialtyIDs: filter.SpecialtyIDs,
			Limit:        broadenedLimit,
		}
		links, err = r.directory.FindLinks(ctx, broadened)
		if err != nil {
			return nil, domain.WrapError(domain.ErrBackendUnavailable, "broadened link query", err)
		}
	}

	links = dedupLinks(links)
	links = excludeDoctorLinks(links, sets.excluded)

	if bag.QueryType == domain.QuerySpecialtiesForDoctor {
		return specialtyBlocks(links), nil
	}

	blocks := make([]string, 0, len(links))
	for _, link := range links {
		if link.Empty() {
			continue
		}
		blocks = append(blocks, r.formatLinkBlock(ctx, link))
	}
	return blocks, nil
}

func (r *RelationshipResolver) compareDoctors(ctx context.Context, bag domain.FilterBag) ([]string, error) {
	if bag.DoctorName == "" || bag.Doctor2Name == "" {
		return nil, nil
	}

	var (
		wg           sync.WaitGroup
		docs1, docs2 []domain.Doctor
		err1, err2   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		docs1, err1 = r.directory.FindDoctorsByName(ctx, textnorm.CleanTerm(bag.DoctorName), candidateLimit)
	}()
	go func() {
		defer wg.Done()
		docs2, err2 = r.directory.FindDoctorsByName(ctx, textnorm.CleanTerm(bag.Doctor2Name), candidateLimit)
	}()
	wg.Wait()

	if err1 != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "resolve first doctor", err1)
	}
	if err2 != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "resolve second doctor", err2)
	}
	if len(docs1) == 0 && len(docs2) == 0 {
		return nil, nil
	}

	union := append(doctorUIDs(docs1), doctorUIDs(docs2)...)
	links, err := r.directory.FindLinks(ctx, ports.LinkFilter{DoctorUIDs: union, Limit: linkQueryLimit})
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "comparison link query", err)
	}

	links = dedupLinks(links)
	blocks := make([]string, 0, len(links))
	for _, link := range links {
		if link.Empty() {
			continue
		}
		blocks = append(blocks, r.formatLinkBlock(ctx, link))
	}
	return blocks, nil
}

func (r *RelationshipResolver) verifyDoctorAtHospital(ctx context.Context, bag domain.FilterBag) ([]string, error) {
	if bag.DoctorName == "" || bag.HospitalName == "" {
		return nil, nil
	}

	doctors, err := r.directory.FindDoctorsByName(ctx, textnorm.CleanTerm(bag.DoctorName), candidateLimit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "verify doctor lookup", err)
	}
	if len(doctors) == 0 {
		return []string{fmt.Sprintf("Verification Result: Doctor %q NOT FOUND in database.", bag.DoctorName)}, nil
	}

	hospitals, err := r.directory.FindHospitals(ctx, textnorm.CleanTerm(bag.HospitalName), "", candidateLimit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "verify hospital lookup", err)
	}
	if len(hospitals) == 0 {
		return []string{fmt.Sprintf("Verification Result: Hospital %q NOT FOUND in database.", bag.HospitalName)}, nil
	}

	links, err := r.directory.FindLinks(ctx, ports.LinkFilter{
		DoctorUIDs:   doctorUIDs(doctors),
		HospitalUIDs: hospitalUIDs(hospitals),
		Limit:        linkQueryLimit,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "verify link query", err)
	}

	if len(links) > 0 {
		dName, hName := doctors[0].FullName, hospitals[0].NameEn
		if links[0].Doctor != nil {
			dName = links[0].Doctor.FullName
		}
		if links[0].Hospital != nil {
			hName = links[0].Hospital.NameEn
		}
		return []string{fmt.Sprintf("VERIFIED: YES. Dr. %s WORKS at %s.", dName, hName)}, nil
	}
	return []string{fmt.Sprintf("VERIFIED: NO. No record found linking Dr. %s to %s.", bag.DoctorName, bag.HospitalName)}, nil
}

func (r *RelationshipResolver) verifyDoctorSpecialty(ctx context.Context, bag domain.FilterBag) ([]string, error) {
	if bag.DoctorName == "" || bag.SpecialtyName == "" {
		return nil, nil
	}

	doctors, err := r.directory.FindDoctorsByName(ctx, textnorm.CleanTerm(bag.DoctorName), candidateLimit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "verify doctor lookup", err)
	}
	if len(doctors) == 0 {
		return []string{fmt.Sprintf("Verification Result: Doctor %q NOT FOUND in database.", bag.DoctorName)}, nil
	}

	specialties, err := r.directory.FindSpecialties(ctx, textnorm.CleanTerm(bag.SpecialtyName), candidateLimit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "verify specialty lookup", err)
	}
	if len(specialties) == 0 {
		return []string{fmt.Sprintf("Verification Result: Specialty %q NOT FOUND in database.", bag.SpecialtyName)}, nil
	}

	links, err := r.directory.FindLinks(ctx, ports.LinkFilter{
		DoctorUIDs:   doctorUIDs(doctors),
		SpecialtyIDs: specialtyIDs(specialties),
		Limit:        linkQueryLimit,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "verify link query", err)
	}

	if len(links) > 0 {
		dName, sName := doctors[0].FullName, specialties[0].NameEn
		if links[0].Doctor != nil {
			dName = links[0].Doctor.FullName
		}
		if links[0].Specialty != nil {
			sName = links[0].Specialty.NameEn
		}
		return []string{fmt.Sprintf("VERIFIED: YES. Dr. %s is a specialist in %s.", dName, sName)}, nil
	}
	return []string{fmt.Sprintf("VERIFIED: NO. No record found linking Dr. %s to specialty %s.", bag.DoctorName, bag.SpecialtyName)}, nil
}

func (r *RelationshipResolver) resolveAppointments(ctx context.Context, bag domain.FilterBag) ([]string, error) {
	if bag.DoctorName == "" {
		return nil, nil
	}

	doctors, err := r.directory.FindDoctorsByName(ctx, textnorm.CleanTerm(bag.DoctorName), candidateLimit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "appointments doctor lookup", err)
	}
	if len(doctors) == 0 {
		return nil, nil
	}

	filter := ports.LinkFilter{DoctorUIDs: doctorUIDs(doctors), Limit: linkQueryLimit}
	if bag.HospitalName != "" {
		hospitals, herr := r.directory.FindHospitals(ctx, textnorm.CleanTerm(bag.HospitalName), bag.Location, candidateLimit)
		if herr != nil {
			return nil, domain.WrapError(domain.ErrBackendUnavailable, "appointments hospital lookup", herr)
		}
		if len(hospitals) == 0 {
			return nil, nil
		}
		filter.HospitalUIDs = hospitalUIDs(hospitals)
	}

	links, err := r.directory.FindLinks(ctx, filter)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "appointments link query", err)
	}
	links = dedupLinks(links)

	// One block per doctor-hospital pair, whichever specialty linked them.
	seen := make(map[string]struct{})
	var blocks []string
	for _, link := range links {
		if link.Doctor == nil || link.Hospital == nil {
			continue
		}
		pair := link.DoctorUID + "|" + link.HospitalUID
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}

		windows, werr := r.availability.Windows(ctx, link.DoctorUID, link.HospitalUID, bag.IsOnline)
		if werr != nil {
			r.logger.Warn("availability lookup degraded", "doctor_uid", link.DoctorUID, "hospital_uid", link.HospitalUID, "error", werr)
			continue
		}
		blocks = append(blocks, formatAppointmentBlock(link.Doctor, link.Hospital, windows))
	}
	return blocks, nil
}

func (r *RelationshipResolver) listDoctors(ctx context.Context) ([]string, error) {
	doctors, err := r.directory.ListDoctors(ctx, listAllLimit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "list doctors", err)
	}
	blocks := make([]string, 0, len(doctors))
	for i := range doctors {
		blocks = append(blocks, formatDoctorBlock(&doctors[i]))
	}
	return blocks, nil
}

func (r *RelationshipResolver) listHospitals(ctx context.Context) ([]string, error) {
	hospitals, err := r.directory.ListHospitals(ctx, listAllLimit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "list hospitals", err)
	}
	blocks := make([]string, 0, len(hospitals))
	for i := range hospitals {
		blocks = append(blocks, formatHospitalBlock(&hospitals[i]))
	}
	return blocks, nil
}

func (r *RelationshipResolver) listSpecialties(ctx context.Context) ([]string, error) {
	specialties, err := r.directory.ListSpecialties(ctx, listAllLimit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "list specialties", err)
	}
	blocks := make([]string, 0, len(specialties))
	for _, s := range specialties {
		blocks = append(blocks, formatSpecialtyBlock(s.NameEn, s.NameAr))
	}
	return blocks, nil
}

func (r *RelationshipResolver) listCities(ctx context.Context) ([]string, error) {
	cities, err := r.directory.ListCities(ctx, listAllLimit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "list cities", err)
	}
	blocks := make([]string, 0, len(cities))
	for _, c := range cities {
		blocks = append(blocks, fmt.Sprintf("City: %s\nCity (Ar): %s", orUnknown(c.NameEn), orUnknown(c.NameAr)))
	}
	return blocks, nil
}

func (r *RelationshipResolver) listAreas(ctx context.Context) ([]string, error) {
	areas, err := r.directory.ListAreas(ctx, listAllLimit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "list areas", err)
	}
	blocks := make([]string, 0, len(areas))
	for _, a := range areas {
		blocks = append(blocks, fmt.Sprintf("Area: %s\nArea (Ar): %s", orUnknown(a.NameEn), orUnknown(a.NameAr)))
	}
	return blocks, nil
}

// formatLinkBlock renders every resolved entity field, with explicit Unknown
// markers so the generator cannot fabricate a value for a missing field. The
// area and city chain is followed through the hospital when present.
func (r *RelationshipResolver) formatLinkBlock(ctx context.Context, link domain.Link) string {
	var areaEn, areaAr, cityEn, cityAr string
	if link.Hospital != nil && link.Hospital.AreaID != "" {
		if area, err := r.directory.GetArea(ctx, link.Hospital.AreaID); err == nil && area != nil {
			areaEn, areaAr = area.NameEn, area.NameAr
			if area.CityID != "" {
				if city, err := r.directory.GetCity(ctx, area.CityID); err == nil && city != nil {
					cityEn, cityAr = city.NameEn, city.NameAr
				}
			}
		}
	}

	var b strings.Builder
	b.WriteString(blockSeparator)
	b.WriteString("\n")
	if link.Doctor != nil {
		fmt.Fprintf(&b, "Doctor: %s\n", orUnknown(link.Doctor.FullName))
		fmt.Fprintf(&b, "Doctor (Ar): %s\n", orUnknown(link.Doctor.FullNameAr))
		fmt.Fprintf(&b, "Doctor title: %s\n", orUnknown(link.Doctor.Title))
		fmt.Fprintf(&b, "Doctor position: %s\n", orUnknown(link.Doctor.PositionEn))
	} else {
		fmt.Fprintf(&b, "Doctor: %s\n", unknownMarker)
	}
	if link.Hospital != nil {
		fmt.Fprintf(&b, "Hospital name: %s\n", orUnknown(link.Hospital.NameEn))
		fmt.Fprintf(&b, "Hospital name (Ar): %s\n", orUnknown(link.Hospital.NameAr))
		fmt.Fprintf(&b, "Hospital Address: %s\n", orUnknown(link.Hospital.AddressEn))
		fmt.Fprintf(&b, "Hospital Address (Ar): %s\n", orUnknown(link.Hospital.AddressAr))
	} else {
		fmt.Fprintf(&b, "Hospital name: %s\n", unknownMarker)
	}
	fmt.Fprintf(&b, "Hospital City: %s\n", orUnknown(cityEn))
	fmt.Fprintf(&b, "Hospital City (Ar): %s\n", orUnknown(cityAr))
	fmt.Fprintf(&b, "Hospital Area: %s\n", orUnknown(areaEn))
	fmt.Fprintf(&b, "Hospital Area (Ar): %s\n", orUnknown(areaAr))
	if link.Specialty != nil {
		fmt.Fprintf(&b, "Specialty name: %s\n", orUnknown(link.Specialty.NameEn))
		fmt.Fprintf(&b, "Specialty name (Ar): %s\n", orUnknown(link.Specialty.NameAr))
	} else {
		fmt.Fprintf(&b, "Specialty name: %s\n", unknownMarker)
	}
	b.WriteString(blockSeparator)
	return b.String()
}

func formatAppointmentBlock(doctor *domain.Doctor, hospital *domain.Hospital, windows []domain.SlotWindow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Doctor: %s\n", orUnknown(doctor.FullName))
	fmt.Fprintf(&b, "Hospital: %s\n", orUnknown(hospital.NameEn))
	if len(windows) == 0 {
		b.WriteString("Appointments: Not available")
		return b.String()
	}
	b.WriteString("Appointments:\n")
	for _, w := range windows {
		mode := "Offline"
		if w.IsOnline {
			mode = "Online"
		}
		fmt.Fprintf(&b, "(%s) %s [%s]: %s", w.DayName, w.Date.Format("2006-01-02"), mode, strings.Join(w.Slots, ", "))
		if w.Price > 0 {
			fmt.Fprintf(&b, " | Price: %g %s", w.Price, w.Currency)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDoctorBlock(d *domain.Doctor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", orUnknown(d.FullName))
	fmt.Fprintf(&b, "Name (Ar): %s\n", orUnknown(d.FullNameAr))
	fmt.Fprintf(&b, "Title: %s\n", orUnknown(d.Title))
	fmt.Fprintf(&b, "Position: %s\n", orUnknown(d.PositionEn))
	fmt.Fprintf(&b, "Qualifications: %s\n", orUnknown(d.QualificationsEn))
	fmt.Fprintf(&b, "Gender: %s\n", orUnknown(d.Gender))
	if d.YearsExperience > 0 {
		fmt.Fprintf(&b, "Years of Experience: %d\n", d.YearsExperience)
	} else {
		fmt.Fprintf(&b, "Years of Experience: %s\n", unknownMarker)
	}
	if d.Rating > 0 {
		fmt.Fprintf(&b, "Rating: %g", d.Rating)
	} else {
		fmt.Fprintf(&b, "Rating: %s", unknownMarker)
	}
	return b.String()
}

func formatHospitalBlock(h *domain.Hospital) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hospital: %s\n", orUnknown(h.NameEn))
	fmt.Fprintf(&b, "Hospital (Ar): %s\n", orUnknown(h.NameAr))
	fmt.Fprintf(&b, "Type: %s\n", orUnknown(h.Type))
	fmt.Fprintf(&b, "Address: %s\n", orUnknown(h.AddressEn))
	fmt.Fprintf(&b, "Address (Ar): %s", orUnknown(h.AddressAr))
	return b.String()
}

func formatSpecialtyBlock(nameEn, nameAr string) string {
	return fmt.Sprintf("Specialty: %s\nArabic Name: %s", orUnknown(nameEn), orUnknown(nameAr))
}

// specialtyBlocks collapses link rows into unique specialty entries.
func specialtyBlocks(links []domain.Link) []string {
	seen := make(map[string]struct{})
	var blocks []string
	for _, link := range links {
		if link.Specialty == nil {
			continue
		}
		if _, dup := seen[link.Specialty.ID]; dup {
			continue
		}
		seen[link.Specialty.ID] = struct{}{}
		blocks = append(blocks, formatSpecialtyBlock(link.Specialty.NameEn, link.Specialty.NameAr))
	}
	return blocks
}

func dedupLinks(links []domain.Link) []domain.Link {
	seen := make(map[string]struct{}, len(links))
	out := links[:0]
	for _, link := range links {
		if link.ID != "" {
			if _, dup := seen[link.ID]; dup {
				continue
			}
			seen[link.ID] = struct{}{}
		}
		out = append(out, link)
	}
	return out
}

func excludeDoctorLinks(links []domain.Link, excluded []domain.Doctor) []domain.Link {
	if len(excluded) == 0 {
		return links
	}
	uids := doctorUIDSet(excluded)
	out := links[:0]
	for _, link := range links {
		if _, skip := uids[link.DoctorUID]; skip {
			continue
		}
		out = append(out, link)
	}
	return out
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownMarker
	}
	return s
}

func hospitalUIDs(hospitals []domain.Hospital) []string {
	uids := make([]string, 0, len(hospitals))
	for _, h := range hospitals {
		if h.UID != "" {
			uids = append(uids, h.UID)
		}
	}
	return uids
}

func doctorUIDs(doctors []domain.Doctor) []string {
	uids := make([]string, 0, len(doctors))
	for _, d := range doctors {
		if d.UID != "" {
			uids = append(uids, d.UID)
		}
	}
	return uids
}

func specialtyIDs(specialties []domain.Specialty) []string {
	ids := make([]string, 0, len(specialties))
	for _, s := range specialties {
		if s.ID != "" {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func doctorUIDSet(doctors []domain.Doctor) map[string]struct{} {
	set := make(map[string]struct{}, len(doctors))
	for _, d := range doctors {
		set[d.UID] = struct{}{}
	}
	return set
}
