package main

import (
	"net/http"
)

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Reports the service version and database reachability
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		503	{object}	map[string]string
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.Env,
		"version": version,
	}

	status := http.StatusOK
	if err := app.store.Ping(r.Context()); err != nil {
		app.logger.Errorw("health check: database unreachable", "error", err.Error())
		data["status"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if err := writeJSON(w, status, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

// helloHandler godoc
//
//	@Summary	Hello
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/hello [get]
func (app *application) helloHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"message": "Hello! I'm a message that came from the backend, check the network tab on the google inspector and you will see the GET request",
	}
	if err := writeJSON(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
