// internal/engine/extract/lexicon.go
package extract

// Vocabulary tables for the lexical pass. Keys are lowercase surface forms
// (Portuguese and English, the two languages present in the asset dataset),
// values are the canonical normalized form bound into SQL parameters.

var equipmentTypeLexicon = map[string]string{
	"transformador":   "Transformer",
	"transformadores": "Transformer",
	"transformer":     "Transformer",
	"transformers":    "Transformer",
	"bomba":           "Pump",
	"bombas":          "Pump",
	"pump":            "Pump",
	"pumps":           "Pump",
	"motor":           "Motor",
	"motores":         "Motor",
	"motors":          "Motor",
	"gerador":         "Generator",
	"geradores":       "Generator",
	"generator":       "Generator",
	"generators":      "Generator",
	"compressor":      "Compressor",
	"compressores":    "Compressor",
	"compressors":     "Compressor",
	"disjuntor":       "CircuitBreaker",
	"disjuntores":     "CircuitBreaker",
	"breaker":         "CircuitBreaker",
	"breakers":        "CircuitBreaker",
	"valvula":         "Valve",
	"válvula":         "Valve",
	"valvulas":        "Valve",
	"válvulas":        "Valve",
	"valve":           "Valve",
	"valves":          "Valve",
	"painel":          "Panel",
	"paineis":         "Panel",
	"painéis":         "Panel",
	"panel":           "Panel",
	"panels":          "Panel",
}

var maintenanceTypeLexicon = map[string]string{
	"preventiva":   "Preventive",
	"preventivas":  "Preventive",
	"preventive":   "Preventive",
	"corretiva":    "Corrective",
	"corretivas":   "Corrective",
	"corrective":   "Corrective",
	"preditiva":    "Predictive",
	"preditivas":   "Predictive",
	"predictive":   "Predictive",
	"inspecao":     "Inspection",
	"inspeção":     "Inspection",
	"inspecoes":    "Inspection",
	"inspeções":    "Inspection",
	"inspection":   "Inspection",
	"inspections":  "Inspection",
	"calibracao":   "Calibration",
	"calibração":   "Calibration",
	"calibration":  "Calibration",
	"lubrificacao": "Lubrication",
	"lubrificação": "Lubrication",
	"lubrication":  "Lubrication",
}

var statusLexicon = map[string]string{
	"operacional":    "Operational",
	"operacionais":   "Operational",
	"operational":    "Operational",
	"ativo":          "Operational",
	"ativos":         "Operational",
	"active":         "Operational",
	"falha":          "Failed",
	"falhas":         "Failed",
	"failed":         "Failed",
	"avariado":       "Failed",
	"avariados":      "Failed",
	"defeito":        "Failed",
	"manutencao":     "UnderMaintenance",
	"manutenção":     "UnderMaintenance",
	"maintenance":    "UnderMaintenance",
	"parado":         "Stopped",
	"parados":        "Stopped",
	"stopped":        "Stopped",
	"pendente":       "Pending",
	"pendentes":      "Pending",
	"pending":        "Pending",
	"desativado":     "Decommissioned",
	"desativados":    "Decommissioned",
	"decommissioned": "Decommissioned",
}
