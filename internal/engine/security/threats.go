// internal/engine/security/threats.go
package security

import (
	"regexp"

	"maintquery/internal/models"
)

// threatPattern couples a detection regex with its category and the score
// penalty it carries. Destructive and mutating categories are penalized the
// hardest; a single hit on either pushes any text below the allow threshold.
type threatPattern struct {
	category models.ThreatCategory
	re       *regexp.Regexp
	penalty  int
}

var threatPatterns = []threatPattern{
	{
		category: models.ThreatDestructiveDDL,
		re:       regexp.MustCompile(`(?i)\b(drop|alter|create|truncate|rename)\s+(table|database|schema|index|view|user)\b|\bdrop\b`),
		penalty:  60,
	},
	{
		category: models.ThreatMutatingDML,
		re:       regexp.MustCompile(`(?i)\b(insert\s+into|update\s+\w+\s+set|delete\s+from|grant\b|revoke\b|merge\s+into)`),
		penalty:  55,
	},
	{
		category: models.ThreatMultiStatement,
		re:       regexp.MustCompile(`;\s*\S`),
		penalty:  45,
	},
	{
		category: models.ThreatCommentInject,
		re:       regexp.MustCompile(`--|/\*|\*/`),
		penalty:  35,
	},
	{
		category: models.ThreatBooleanInject,
		re:       regexp.MustCompile(`(?i)('\s*(or|and)\s*'?\d*'?\s*=\s*'?\d*)|(\b(or|and)\s+1\s*=\s*1\b)|('\s*or\s*')`),
		penalty:  50,
	},
	{
		category: models.ThreatUnionInject,
		re:       regexp.MustCompile(`(?i)\bunion\s+(all\s+)?select\b`),
		penalty:  50,
	},
	{
		category: models.ThreatEncodedBypass,
		re:       regexp.MustCompile(`(?i)(%27|%22|%3b|%2d%2d)|(\b0x[0-9a-f]{4,}\b)|(\bchr?\s*\()`),
		penalty:  40,
	},
	{
		category: models.ThreatSystemAccess,
		re:       regexp.MustCompile(`(?i)\b(information_schema|pg_catalog|pg_sleep|pg_shadow|xp_cmdshell|exec\s*\(|execute\s+immediate)\b`),
		penalty:  45,
	},
}

// severeCategories force an outright reject regardless of bonuses.
var severeCategories = map[models.ThreatCategory]bool{
	models.ThreatDestructiveDDL: true,
	models.ThreatMutatingDML:    true,
	models.ThreatMultiStatement: true,
	models.ThreatUnionInject:    true,
	models.ThreatBooleanInject:  true,
	models.ThreatSystemAccess:   true,
}

// sanitizableCategories can be stripped from a raw question (not from SQL)
// without changing its meaning.
var sanitizableCategories = map[models.ThreatCategory]bool{
	models.ThreatCommentInject: true,
	models.ThreatEncodedBypass: true,
}

// domainVocabulary earns trust bonuses: real maintenance questions mention
// the dataset's subject matter.
var domainVocabulary = []string{
	"equipment", "equipamento", "equipamentos",
	"maintenance", "manutencao", "manutenção",
	"transformador", "transformer", "bomba", "pump", "motor",
	"gerador", "generator", "status", "falha", "failure",
	"inspecao", "inspeção", "inspection", "location", "local",
	"preventiva", "corretiva", "preventive", "corrective",
	"work order", "ordem de servico", "ordem de serviço",
}

// questionMarkers earn the natural-phrasing bonus.
var questionMarkers = []string{
	"quantos", "quantas", "quando", "qual", "quais", "onde", "como",
	"how many", "how much", "when", "what", "which", "where", "who", "list",
	"show", "mostrar", "listar",
}
