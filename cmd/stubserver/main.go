// Command stubserver runs the in-memory development server implementing the
// booking API contract. Point the client's API_BASE_URL at it to work without
// the production backend.
package main

import (
	"roombook/config"
	"roombook/stubserver"
	"roombook/utils"

	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	store := stubserver.NewStore()
	router := stubserver.NewRouter(store)

	addr := ":" + config.AppConfig.StubPort
	logger.Info("Stub server listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("Stub server stopped", zap.Error(err))
	}
}
