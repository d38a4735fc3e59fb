package api

import (
	"github.com/gorilla/mux"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/config"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, store storage.AppDataStore) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(MaxBodyMiddleware(cfg.MaxBodyBytes))

	// Create handlers
	systemHandler := &SystemHandler{}
	appDataHandler := NewAppDataHandler(store)
	equipmentHandler := NewEquipmentHandler(store)
	inspectionsHandler := NewInspectionsHandler(store)
	proxyHandler := NewProxyHandler(cfg.ProxyTimeout)

	// Endpoints that must answer before the store is ready
	r.HandleFunc("/healthz", systemHandler.HealthzHandler).Methods("GET")
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/api/image-proxy", proxyHandler.ProxyImage).Methods("GET")

	// Everything else under /api waits for migration and seeding
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(StoreReadyMiddleware(store))

	apiRouter.HandleFunc("/app-data", appDataHandler.GetAppData).Methods("GET")
	apiRouter.HandleFunc("/client", appDataHandler.PatchClient).Methods("PATCH")
	apiRouter.HandleFunc("/inspection", appDataHandler.PatchInspection).Methods("PATCH")
	apiRouter.HandleFunc("/equipment/{id}", equipmentHandler.GetEquipment).Methods("GET")
	apiRouter.HandleFunc("/equipment/{id}", equipmentHandler.DeleteEquipment).Methods("DELETE")
	apiRouter.HandleFunc("/equipment", equipmentHandler.CreateEquipment).Methods("POST")
	apiRouter.HandleFunc("/categories", equipmentHandler.CreateCategory).Methods("POST")
	apiRouter.HandleFunc("/inspections", inspectionsHandler.SubmitInspection).Methods("POST")

	// Static assets + SPA fallback; unmatched /api paths 404 as JSON
	r.PathPrefix("/").Handler(NewSPAHandler(cfg.StaticDir))

	return r
}
