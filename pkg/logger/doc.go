// Package logger builds *slog.Logger instances for the module's services.
//
// New assembles a JSON or text handler and wraps it with LogHandlerDecorator,
// which runs the registered ContextExtractor callbacks on every record. The
// request id and tenant packages ship extractors, so a single InfoContext call
// in a handler carries request_id, user_id and organization_id without the
// caller passing them.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "tenantkit"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			clientip.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//
// Attribute helpers (Error, UserID, OrganizationID, Table, Alert) keep key
// names consistent across packages.
package logger
