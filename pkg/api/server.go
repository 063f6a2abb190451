// Zaparoo WAD Launcher
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo WAD Launcher.
//
// Zaparoo WAD Launcher is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo WAD Launcher is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo WAD Launcher.  If not, see <http://www.gnu.org/licenses/>.

// Package api serves the launcher's JSON-RPC 2.0 API over WebSocket and
// HTTP POST on the same path. Events are broadcast to every WebSocket
// client as JSON-RPC notifications.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	apimiddleware "github.com/ZaparooProject/wadlauncher/pkg/api/middleware"
	"github.com/ZaparooProject/wadlauncher/pkg/api/methods"
	"github.com/ZaparooProject/wadlauncher/pkg/api/models"
	"github.com/ZaparooProject/wadlauncher/pkg/api/models/requests"
	"github.com/ZaparooProject/wadlauncher/pkg/api/validation"
	"github.com/ZaparooProject/wadlauncher/pkg/config"
	"github.com/ZaparooProject/wadlauncher/pkg/database"
	"github.com/ZaparooProject/wadlauncher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/wadlauncher/pkg/launcher"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const (
	APIPath        = "/api"
	maxRequestSize = 1 << 20
	shutdownGrace  = 5 * time.Second
)

var (
	JSONRPCErrorParseError = models.ErrorObject{
		Code:    -32700,
		Message: "Parse error",
	}
	JSONRPCErrorInvalidRequest = models.ErrorObject{
		Code:    -32600,
		Message: "Invalid Request",
	}
	JSONRPCErrorMethodNotFound = models.ErrorObject{
		Code:    -32601,
		Message: "Method not found",
	}
	JSONRPCErrorInvalidParams = models.ErrorObject{
		Code:    -32602,
		Message: "Invalid params",
	}
	JSONRPCErrorServerError = models.ErrorObject{
		Code:    -32000,
		Message: "Server error",
	}
)

var ErrMethodExists = errors.New("method already registered")

type MethodFunc func(requests.RequestEnv) (any, error)

// MethodMap is the registry of JSON-RPC methods. Names are case-insensitive.
type MethodMap struct {
	methods map[string]MethodFunc
	mu      syncutil.RWMutex
}

// NewMethodMap returns a map with every built-in method registered.
func NewMethodMap() *MethodMap {
	m := &MethodMap{
		methods: map[string]MethodFunc{
			// app
			models.MethodAppInit: methods.HandleAppInit,
			models.MethodVersion: methods.HandleVersion,
			models.MethodTags:    methods.HandleTags,
			// games
			models.MethodGames:        methods.HandleGames,
			models.MethodGame:         methods.HandleGame,
			models.MethodGameFiles:    methods.HandleGameFiles,
			models.MethodGameUpdate:   methods.HandleGameUpdate,
			models.MethodGameStart:    methods.HandleGameStart,
			models.MethodGamePlan:     methods.HandleGamePlan,
			models.MethodGameReveal:   methods.HandleGameReveal,
			models.MethodPlaySessions: methods.HandlePlaySessions,
			// source ports
			models.MethodSourcePorts:       methods.HandleSourcePorts,
			models.MethodSourcePortsKnown:  methods.HandleKnownSourcePorts,
			models.MethodSourcePortsNew:    methods.HandleAddSourcePort,
			models.MethodSourcePortsUpdate: methods.HandleUpdateSourcePort,
			models.MethodSourcePortsDelete: methods.HandleDeleteSourcePort,
			// settings
			models.MethodSettings:       methods.HandleSettings,
			models.MethodSettingsUpdate: methods.HandleSettingsUpdate,
		},
	}
	return m
}

func (m *MethodMap) AddMethod(name string, fn MethodFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = strings.ToLower(name)
	if _, ok := m.methods[name]; ok {
		return fmt.Errorf("%w: %s", ErrMethodExists, name)
	}
	m.methods[name] = fn
	return nil
}

func (m *MethodMap) GetMethod(name string) (MethodFunc, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fn, ok := m.methods[strings.ToLower(name)]
	return fn, ok
}

// Services are the long-lived dependencies handed to every request.
type Services struct {
	Platform      platforms.Platform
	Config        *config.Instance
	Catalog       database.Catalog
	Launcher      *launcher.Launcher
	Notifications chan<- models.Notification
}

func (s *Services) env(ctx context.Context, remoteAddr string) requests.RequestEnv {
	return requests.RequestEnv{
		Context:       ctx,
		Platform:      s.Platform,
		Config:        s.Config,
		Catalog:       s.Catalog,
		Launcher:      s.Launcher,
		Notifications: s.Notifications,
		IsLocal:       isLoopbackAddr(remoteAddr),
	}
}

func isLoopbackAddr(remoteAddr string) bool {
	ip := apimiddleware.ParseRemoteIP(remoteAddr)
	return ip != nil && ip.IsLoopback()
}

// errorObject maps a handler error to its JSON-RPC error. The message is
// the error text so clients see which game or port was involved.
func errorObject(err error) models.ErrorObject {
	var ve *validation.Error
	if errors.As(err, &ve) ||
		errors.Is(err, validation.ErrMissingParams) ||
		errors.Is(err, validation.ErrInvalidParams) {
		return models.ErrorObject{
			Code:    JSONRPCErrorInvalidParams.Code,
			Message: err.Error(),
		}
	}
	return models.ErrorObject{
		Code:    JSONRPCErrorServerError.Code,
		Message: err.Error(),
	}
}

func marshalError(id models.RPCID, errObj models.ErrorObject) []byte {
	log.Debug().Int("code", errObj.Code).Str("message", errObj.Message).Msg("sending error")

	data, err := json.Marshal(models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &errObj,
	})
	if err != nil {
		log.Error().Err(err).Msg("error marshalling error response")
		return nil
	}
	return data
}

// processRequest handles one JSON-RPC message and returns the encoded
// response, or nil if nothing should be sent back.
func processRequest(
	ctx context.Context,
	methodMap *MethodMap,
	svc *Services,
	remoteAddr string,
	msg []byte,
) []byte {
	if !json.Valid(msg) {
		log.Warn().Msg("request is not valid json")
		return marshalError(models.NullRPCID, JSONRPCErrorParseError)
	}

	var req models.RequestObject
	if err := json.Unmarshal(msg, &req); err != nil {
		log.Warn().Err(err).Msg("error decoding request")
		return marshalError(models.NullRPCID, JSONRPCErrorInvalidRequest)
	}

	id := models.NullRPCID
	if !req.ID.IsAbsent() {
		id = *req.ID
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		log.Warn().Str("jsonrpc", req.JSONRPC).Str("method", req.Method).Msg("invalid request")
		return marshalError(id, JSONRPCErrorInvalidRequest)
	}

	if req.ID.IsAbsent() {
		log.Info().Str("method", req.Method).Msg("received notification, ignoring")
		return nil
	}

	fn, ok := methodMap.GetMethod(req.Method)
	if !ok {
		log.Warn().Str("method", req.Method).Msg("unknown method")
		return marshalError(id, JSONRPCErrorMethodNotFound)
	}

	log.Debug().Str("method", req.Method).Str("id", id.String()).Msg("received request")

	env := svc.env(ctx, remoteAddr)
	env.ID = id
	env.Params = req.Params

	result, err := fn(env)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Msg("error handling request")
		return marshalError(id, errorObject(err))
	}

	data, err := json.Marshal(models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
	if err != nil {
		log.Error().Err(err).Msg("error marshalling response")
		return marshalError(id, JSONRPCErrorServerError)
	}
	return data
}

// handleWSMessage answers WebSocket messages. Each request runs in its own
// goroutine since games.start holds its request open until the game exits.
func handleWSMessage(
	ctx context.Context,
	methodMap *MethodMap,
	svc *Services,
) func(*melody.Session, []byte) {
	return func(session *melody.Session, msg []byte) {
		// heartbeat
		if bytes.Equal(msg, []byte("ping")) {
			if err := session.Write([]byte("pong")); err != nil {
				log.Error().Err(err).Msg("sending pong")
			}
			return
		}

		go func() {
			resp := processRequest(ctx, methodMap, svc, session.Request.RemoteAddr, msg)
			if resp == nil {
				return
			}
			if err := session.Write(resp); err != nil {
				log.Error().Err(err).Msg("error sending response")
			}
		}()
	}
}

func handlePostRequest(methodMap *MethodMap, svc *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestSize))
		if err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		resp := processRequest(r.Context(), methodMap, svc, r.RemoteAddr, body)
		if resp == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(resp); err != nil {
			log.Error().Err(err).Msg("error writing response")
		}
	}
}

func broadcastNotifications(
	ctx context.Context,
	m *melody.Melody,
	notifications <-chan models.Notification,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case notif := <-notifications:
			req := models.RequestObject{
				JSONRPC: "2.0",
				Method:  notif.Method,
			}
			if notif.Params != nil {
				params, err := json.Marshal(notif.Params)
				if err != nil {
					log.Error().Err(err).Msg("marshalling notification params")
					continue
				}
				req.Params = params
			}

			data, err := json.Marshal(req)
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification request")
				continue
			}

			if err := m.Broadcast(data); err != nil {
				log.Error().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

// NewRouter builds the HTTP handler for the API. Notifications received
// on the channel are broadcast until ctx is done.
func NewRouter(
	ctx context.Context,
	methodMap *MethodMap,
	svc *Services,
	notifications <-chan models.Notification,
) (http.Handler, *melody.Melody) {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: svc.Config.AllowedOrigins(),
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{},
	}))

	limiter := apimiddleware.NewIPRateLimiter(clockwork.NewRealClock())
	limiter.StartCleanup(ctx)
	r.Use(apimiddleware.HTTPRateLimitMiddleware(limiter))

	m := melody.New()
	m.Config.MaxMessageSize = maxRequestSize
	m.Upgrader.CheckOrigin = func(_ *http.Request) bool { return true }
	m.HandleMessage(apimiddleware.WebSocketRateLimitHandler(limiter, handleWSMessage(ctx, methodMap, svc)))
	go broadcastNotifications(ctx, m, notifications)

	r.Get(APIPath, func(w http.ResponseWriter, r *http.Request) {
		if err := m.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})
	r.Post(APIPath, handlePostRequest(methodMap, svc))

	return r, m
}

// Start serves the API on the configured listen address until ctx is
// cancelled.
func Start(ctx context.Context, svc *Services, notifications <-chan models.Notification) error {
	handler, m := NewRouter(ctx, NewMethodMap(), svc, notifications)

	srv := &http.Server{
		Addr:              svc.Config.APIListen(),
		Handler:           handler,
		ReadHeaderTimeout: config.APIRequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting api server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = m.Close()
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := m.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing websocket sessions")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}
