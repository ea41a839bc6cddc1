package rls

type CatalogTable = catalogTable

var BuildReport = buildReport
