package ollama

import (
	"fmt"
	"strings"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

func buildRoutePrompt(question string) string {
	return `You are a query router for a medical directory assistant covering hospitals, doctors, specialties, areas and cities.
Return a strict JSON object with keys:
operation (one of "direct_structured", "semantic", "combined"),
entity (one of "hospitals", "doctors", "specialties", "areas", "cities", "relationships"),
params (object).

params may contain:
query_type (one of "doctorsAtHospital", "hospitalsForDoctor", "specialistsAtHospital", "specialtiesAtHospital", "specialtiesForDoctor", "specialtiesComparison", "allDoctors", "allHospitals", "allSpecialties", "allCities", "allAreas", "doctorAppointments", "checkDoctorAtHospital", "checkDoctorSpecialty"),
hospital_name, location, specialty_name, doctor_name, doctor2_name, gender, exclude_doctor_name (strings),
is_online (boolean).

Rules:
- "direct_structured" for questions answerable purely from directory records (who works where, schedules, listings, yes/no checks).
- "semantic" for descriptive or advisory questions with no structured shape.
- "combined" when a structured lookup needs retrieval to pin down entity names first.
- Omit params you cannot fill. Names may be Arabic or English; copy them as written.
No markdown, no extra keys.

Question:
` + question
}

func buildExtractionPrompt(question string, snippets []string) string {
	var b strings.Builder
	for i, snippet := range snippets {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, snippet)
	}

	return fmt.Sprintf(`Extract directory entity names mentioned in the context that could answer the question.
Return a strict JSON object: {"candidates": [{"kind": ..., "value": ..., "original": ..., "relevance": ...}]}.
kind is one of "hospitals", "doctors", "specialties", "areas", "cities".
value is the exact name as written in the context. original is the phrase in the question it matches. relevance is a short reason.
Return an empty candidates array if nothing fits. No markdown, no extra keys.

Question:
%s

Context:
%s`, question, b.String())
}

func buildValidationPrompt(question string, candidate domain.EntityCandidate) string {
	return fmt.Sprintf(`Does the %s entity %q actually answer or constrain the question below?
Answer with a strict JSON object: {"match": true} or {"match": false}. No markdown, no extra keys.

Question:
%s`, candidate.Kind, candidate.Value, question)
}

func buildAnswerPrompt(question, contextBlock, language string) string {
	languageRule := "Answer in English."
	if language == "ar" {
		languageRule = "Answer in Arabic."
	}

	return fmt.Sprintf(`You are a medical directory assistant. Answer the user question only from the context below.
%s
If the context carries a TOTAL RESULTS directive, list every item it counts; never truncate the list.
Do not invent hospitals, doctors, specialties, prices or schedules that are not in the context.
If the context is insufficient, say so directly.

Question:
%s

Context:
%s
`, languageRule, question, contextBlock)
}
