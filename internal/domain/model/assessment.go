// Package model contains the assessment domain types passed between layers.
package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PathType identifies one axis of assessment. The set is open: unknown
// values are carried through and scored with a neutral fallback metric.
type PathType string

// Known assessment paths.
const (
	PathTechnical      PathType = "technical"
	PathDesign         PathType = "design"
	PathCollaboration  PathType = "collaboration"
	PathProblemSolving PathType = "problem_solving"
)

// Title renders the path for human-facing labels, e.g. "Problem Solving".
func (p PathType) Title() string {
	words := strings.ReplaceAll(string(p), "_", " ")
	return cases.Title(language.English).String(words)
}

// SubmissionType classifies the submitted artefact.
type SubmissionType string

// Submission kinds. Pattern checks only run for SubmissionCode.
const (
	SubmissionCode    SubmissionType = "code"
	SubmissionText    SubmissionType = "text"
	SubmissionProject SubmissionType = "project"
)

// EvidenceType tags what an Evidence entry supports.
type EvidenceType string

// Evidence categories.
const (
	EvidenceCodeQuality   EvidenceType = "code_quality"
	EvidenceTesting       EvidenceType = "testing"
	EvidenceArchitecture  EvidenceType = "architecture"
	EvidenceDocumentation EvidenceType = "documentation"
)

// MotiveType is a motivational signal detected in a submission.
type MotiveType string

// Micro-motive kinds.
const (
	MotiveMastery       MotiveType = "mastery"
	MotiveQuality       MotiveType = "quality"
	MotiveInnovation    MotiveType = "innovation"
	MotiveCollaboration MotiveType = "collaboration"
	MotiveExploration   MotiveType = "exploration"
	MotiveEfficiency    MotiveType = "efficiency"
)

// Evidence supports a metric or motive. Weight is in [0,1].
type Evidence struct {
	Type        EvidenceType   `json:"type"`
	Description string         `json:"description"`
	Source      string         `json:"source"`
	Weight      float64        `json:"weight"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ScoringMetric is one heuristic's verdict. Score is in [0,100] and
// Confidence in [0,1].
type ScoringMetric struct {
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Score       float64    `json:"score"`
	Weight      float64    `json:"weight"`
	Evidence    []Evidence `json:"evidence"`
	Explanation string     `json:"explanation"`
	Confidence  float64    `json:"confidence"`
}

// MicroMotive is a detected motivational signal attached to a path.
type MicroMotive struct {
	MotiveType    MotiveType `json:"motive_type"`
	Strength      float64    `json:"strength"`
	Indicators    []string   `json:"indicators"`
	Evidence      []Evidence `json:"evidence"`
	PathAlignment PathType   `json:"path_alignment"`
}

// PathScore aggregates the metrics of a single path.
type PathScore struct {
	Path                PathType        `json:"path"`
	OverallScore        float64         `json:"overall_score"`
	Metrics             []ScoringMetric `json:"metrics"`
	Motives             []MicroMotive   `json:"motives"`
	Strengths           []string        `json:"strengths"`
	AreasForImprovement []string        `json:"areas_for_improvement"`
}

// AssessmentInput is the caller-supplied submission. It is treated as
// immutable by every component.
type AssessmentInput struct {
	CandidateID     string         `json:"candidate_id" validate:"required"`
	SubmissionType  SubmissionType `json:"submission_type" validate:"required,oneof=code text project"`
	Content         map[string]any `json:"content" validate:"required"`
	PathsToEvaluate []PathType     `json:"paths_to_evaluate" validate:"unique"`
}

// Text returns the flattened submission text used by every heuristic.
func (in AssessmentInput) Text() string {
	return ExtractText(in.Content)
}

// PatternCheckSummary is stored under the "pattern_checks" metadata key.
type PatternCheckSummary struct {
	Enabled        bool             `json:"enabled"`
	ViolationCount int              `json:"violation_count"`
	PenaltyPoints  float64          `json:"penalty_points"`
	Violations     []map[string]any `json:"violations"`
}

// Metadata keys on AssessmentResult.
const (
	MetaAssessmentMode   = "assessment_mode"
	MetaCouncilAvailable = "council_available"
	MetaPatternChecks    = "pattern_checks"
)

// Assessment modes reported in metadata.
const (
	ModeHeuristic     = "heuristic"
	ModeHybridCouncil = "hybrid_council"
)

// AssessmentResult is produced fresh by every assessment.
type AssessmentResult struct {
	CandidateID      string         `json:"candidate_id"`
	AssessmentID     string         `json:"assessment_id"`
	OverallScore     float64        `json:"overall_score"`
	Confidence       float64        `json:"confidence"`
	PathScores       []PathScore    `json:"path_scores"`
	MicroMotives     []MicroMotive  `json:"micro_motives"`
	DominantPath     *PathType      `json:"dominant_path"`
	Summary          string         `json:"summary"`
	KeyFindings      []string       `json:"key_findings"`
	Recommendations  []string       `json:"recommendations"`
	EngineVersion    string         `json:"engine_version"`
	ProcessingTimeMS float64        `json:"processing_time_ms"`
	Metadata         map[string]any `json:"metadata"`
}
