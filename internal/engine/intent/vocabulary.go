// internal/engine/intent/vocabulary.go
package intent

// Lexical markers, Portuguese and English. Past indicators are execution
// verbs; future indicators are planning verbs. Both lists are matched as
// substrings of the lowered question.

var pastIndicators = []string{
	"foi executada", "foi executado", "foram executadas", "foram executados",
	"foi realizada", "foi realizado", "foi feita", "foi feito",
	"foi concluida", "foi concluída", "foi concluido", "foi concluído",
	"ocorreu", "aconteceu", "ultima vez", "última vez",
	"was executed", "were executed", "was performed", "were performed",
	"was done", "were done", "was completed", "were completed",
	"occurred", "happened", "last time", "last executed",
}

var futureIndicators = []string{
	"sera", "será", "serao", "serão", "planejada", "planejado",
	"agendada", "agendado", "programada", "programado",
	"proxima", "próxima", "proximo", "próximo",
	"will be", "planned", "scheduled", "upcoming", "next",
}

var maintenanceKeywords = []string{
	"manutencao", "manutenção", "manutencoes", "manutenções",
	"maintenance", "preventiva", "corretiva", "preditiva",
	"preventive", "corrective", "predictive",
	"ordem de servico", "ordem de serviço", "work order", "serviço",
	"inspecao", "inspeção", "inspection", "reparo", "repair", "teste", "test",
}

var countKeywords = []string{
	"quantos", "quantas", "quantidade", "total de", "numero de", "número de",
	"how many", "count", "number of",
}

var statusKeywords = []string{
	"status", "estado", "situacao", "situação", "condicao", "condição",
	"condition", "operacional", "operational",
}

var historyKeywords = []string{
	"historico", "histórico", "history", "registros", "records",
	"todas as", "all the", "listar", "list",
}

var failureKeywords = []string{
	"falha", "falhas", "failure", "failures", "defeito", "defeitos",
	"avaria", "avarias", "quebrou", "broke", "broke down", "problema",
	"problem",
}

var searchKeywords = []string{
	"onde", "where", "qual", "quais", "which", "encontrar", "find",
	"procurar", "search", "buscar", "mostrar", "show",
}
