package dashboard

// Toast texts shown to the user
const (
	msgDashboardFailed     = "Erro ao carregar dados do dashboard"
	msgTeamsFailed         = "Erro ao carregar equipas"
	msgMatchesFailed       = "Erro ao carregar partidas"
	msgPerformanceFailed   = "Erro ao carregar dados de performance"
	msgOpportunitiesOK     = "Oportunidades atualizadas com sucesso"
	msgOpportunitiesFailed = "Erro ao buscar oportunidades"
	msgSelectBothTeams     = "Por favor, selecione ambas as equipas"
	msgSelectDifferent     = "Por favor, selecione equipas diferentes"
	msgAnalysisOK          = "Análise concluída com sucesso"
	msgAnalysisFailed      = "Erro ao analisar partida"
	msgInvalidBet          = "Por favor, insira valores válidos"
	msgSyncStarted         = "Iniciando sincronização de dados..."
	msgSyncChampionship    = "Campeonato %d: %d equipas, %d partidas"
	msgStatsCalculated     = "Estatísticas calculadas para %d equipas"
	msgStatsFailed         = "Erro ao calcular estatísticas"
	msgSyncFailed          = "Erro durante a sincronização"
	msgSyncDone            = "Sincronização concluída com sucesso!"
	msgReloadFailed        = "Dados sincronizados, mas erro ao recarregar o dashboard"
	msgNotImplemented      = "Funcionalidade em desenvolvimento"
)
