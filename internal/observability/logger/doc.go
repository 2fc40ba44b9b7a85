// Package logger provee un logger Zap singleton con scoping por contexto.
//
// # Design Decisions
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context Scoping: cada request lleva su propio logger "scoped" con
//     request_id, method y path, inyectado por el middleware de logging.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Secretos: nunca se loguean passwords, codes, verifiers ni tokens.
//     Para correlacionar un authorization code usar CodeRef().
//
// # Usage
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("TokenService.Exchange"))
//	log.Info("code exchanged", logger.ClientID(clientID), logger.CodeRef(code))
package logger
