// internal/models/security.go
package models

// ThreatCategory names a class of injection pattern.
type ThreatCategory string

const (
	ThreatDestructiveDDL  ThreatCategory = "destructive_ddl"
	ThreatMutatingDML     ThreatCategory = "mutating_dml"
	ThreatMultiStatement  ThreatCategory = "multi_statement"
	ThreatCommentInject   ThreatCategory = "comment_injection"
	ThreatBooleanInject   ThreatCategory = "boolean_injection"
	ThreatUnionInject     ThreatCategory = "union_injection"
	ThreatEncodedBypass   ThreatCategory = "encoded_bypass"
	ThreatSystemAccess    ThreatCategory = "system_access"
	ThreatNonSelectOutput ThreatCategory = "non_select_output"
)

// Verdict is the outcome of a threat assessment.
type Verdict string

const (
	VerdictAllow    Verdict = "allow"
	VerdictSanitize Verdict = "sanitize"
	VerdictReject   Verdict = "reject"
)

// ThreatAssessment scores a piece of text for injection risk. Produced twice
// per request: once for the raw question, once for any generated SQL.
type ThreatAssessment struct {
	RiskScore     int              `json:"riskScore"` // 0-100, higher is safer
	Categories    []ThreatCategory `json:"categories,omitempty"`
	SanitizedText string           `json:"sanitizedText"`
	Verdict       Verdict          `json:"verdict"`
}

// Allowed reports whether the assessed text may proceed to execution.
func (a ThreatAssessment) Allowed() bool {
	return a.Verdict == VerdictAllow
}
