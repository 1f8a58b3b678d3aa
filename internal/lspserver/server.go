// Package lspserver implements jvl's "jvl lsp" mode: a Language Server
// Protocol backend that validates open JSON/JSONC documents against
// their resolved schema and republishes diagnostics as the user types,
// sharing the config and schema caches with the batch "jvl check" path
// in internal/validate.
package lspserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/sargunv/jvl/internal/config"
	"github.com/sargunv/jvl/internal/coords"
	"github.com/sargunv/jvl/internal/protocol"
	"github.com/sargunv/jvl/internal/rpc"
	"github.com/sargunv/jvl/internal/schema"
)

// serverVersion is reported to the client in InitializeResult.ServerInfo.
const serverVersion = "0.1.0"

// Server is one LSP session's state: open documents, the config and
// schema caches shared with the batch CLI checker, and the concurrency
// controls the debounced validation pipeline runs under.
type Server struct {
	conn   *rpc.Conn
	logger *slog.Logger

	documents   *documentStore
	configCache *config.Cache
	schemaCache *schema.Cache
	sem         *semaphore.Weighted

	encMu sync.RWMutex
	enc   coords.Encoding

	workspaceRoot           string
	dynamicWatchRegistered  atomic.Bool
	fallbackWatcher         *configWatcher
	fallbackWatcherStopOnce sync.Once

	shutdownRequested atomic.Bool
}

// NewServer wires a Server around conn. logger receives server-internal
// diagnostics; a subset (config load failures, cache warnings) is also
// mirrored to the client via window/logMessage.
func NewServer(conn *rpc.Conn, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		conn:        conn,
		logger:      logger,
		documents:   newDocumentStore(),
		configCache: config.NewCache(),
		schemaCache: schema.NewCache(),
		sem:         semaphore.NewWeighted(maxConcurrentValidations),
		enc:         coords.UTF16,
	}
}

// Run reads and dispatches JSON-RPC messages from conn until the client
// sends exit or the stream closes.
func (s *Server) Run() error {
	defer s.stopFallbackWatcher()

	for {
		req, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}

		if req.Method == "exit" {
			return nil
		}

		s.dispatch(req)
	}
}

func (s *Server) dispatch(req rpc.Request) {
	switch req.Method {
	case "initialize":
		s.handleRequest(req, s.handleInitialize)
	case "initialized":
		s.handleInitialized()
	case "shutdown":
		s.handleRequest(req, func(json.RawMessage) (any, *rpc.ErrorObject) {
			s.shutdownRequested.Store(true)
			return nil, nil
		})
	case "textDocument/didOpen":
		s.handleDidOpen(req.Params)
	case "textDocument/didChange":
		s.handleDidChange(req.Params)
	case "textDocument/didClose":
		s.handleDidClose(req.Params)
	case "workspace/didChangeWatchedFiles":
		s.handleDidChangeWatchedFiles(req.Params)
	case "textDocument/hover":
		s.handleRequest(req, s.handleHover)
	case "$/cancelRequest":
		// No in-flight request bookkeeping to cancel against; jvl's
		// handlers (hover, config/schema lookups) all complete fast
		// enough that cancellation isn't worth the tracking machinery.
	default:
		if !req.IsNotification() {
			_ = s.conn.WriteResponse(req.ID, nil, &rpc.ErrorObject{
				Code:    rpc.CodeMethodNotFound,
				Message: fmt.Sprintf("method not found: %s", req.Method),
			})
		}
	}
}

func (s *Server) handleRequest(req rpc.Request, fn func(json.RawMessage) (any, *rpc.ErrorObject)) {
	result, errObj := fn(req.Params)
	if err := s.conn.WriteResponse(req.ID, result, errObj); err != nil {
		s.logger.Error("write response", "method", req.Method, "err", err)
	}
}

func (s *Server) handleInitialize(params json.RawMessage) (any, *rpc.ErrorObject) {
	var p protocol.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &rpc.ErrorObject{Code: rpc.CodeInvalidParams, Message: err.Error()}
	}

	var clientEncodings []string
	if p.Capabilities.General != nil {
		clientEncodings = p.Capabilities.General.PositionEncodings
	}
	enc := coords.NegotiateEncoding(clientEncodings)
	s.encMu.Lock()
	s.enc = enc
	s.encMu.Unlock()

	if p.Capabilities.Workspace != nil && p.Capabilities.Workspace.DidChangeWatchedFiles != nil {
		s.dynamicWatchRegistered.Store(p.Capabilities.Workspace.DidChangeWatchedFiles.DynamicRegistration)
	}

	switch {
	case len(p.WorkspaceFolders) > 0:
		if root, ok := uriToFilePath(p.WorkspaceFolders[0].URI); ok {
			s.workspaceRoot = root
		}
	case p.RootURI != nil:
		if root, ok := uriToFilePath(*p.RootURI); ok {
			s.workspaceRoot = root
		}
	}

	return protocol.InitializeResult{
		ServerInfo: &protocol.ServerInfo{Name: "jvl", Version: serverVersion},
		Capabilities: protocol.ServerCapabilities{
			PositionEncoding: enc.String(),
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncFull,
			},
			HoverProvider: true,
			Workspace: &protocol.WorkspaceServerCapabilities{
				WorkspaceFolders: &protocol.WorkspaceFoldersServerCapabilities{Supported: true},
			},
		},
	}, nil
}

// handleInitialized attempts to register a dynamic watcher for
// "**/jvl.json" changes. Clients that never advertised dynamic
// registration support for workspace/didChangeWatchedFiles cannot honor
// that request, so for them jvl falls back to its own fsnotify-based
// watch on the workspace root's jvl.json instead of registering at all.
func (s *Server) handleInitialized() {
	if !s.dynamicWatchRegistered.Load() {
		s.armFallbackWatcher()
		return
	}

	registration := protocol.Registration{
		ID:     "jvl-config-watch",
		Method: "workspace/didChangeWatchedFiles",
		RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
			Watchers: []protocol.FileSystemWatcher{{GlobPattern: "**/jvl.json"}},
		},
	}
	params := protocol.RegistrationParams{Registrations: []protocol.Registration{registration}}
	if err := s.conn.WriteRequest(json.RawMessage(`"jvl-register-config-watch"`), "client/registerCapability", params); err != nil {
		s.logger.Warn("register capability", "err", err)
		s.armFallbackWatcher()
	}
}

// armFallbackWatcher starts watching the workspace root's jvl.json
// directly, for clients that can't dynamically register file watchers.
func (s *Server) armFallbackWatcher() {
	if s.workspaceRoot == "" {
		return
	}
	path := filepath.Join(s.workspaceRoot, "jvl.json")
	watcher, changed, err := newConfigWatcher(path, debounceDelay, s.logger)
	if err != nil {
		s.logNotify(protocol.MessageTypeWarning, fmt.Sprintf(
			"jvl: failed to watch %s for changes (%v); edits to jvl.json won't trigger re-validation until documents are reopened", path, err))
		return
	}
	s.fallbackWatcher = watcher

	go func() {
		for range changed {
			s.configCache.Invalidate(path)
			s.revalidateAllOpenDocuments()
		}
	}()
}

func (s *Server) stopFallbackWatcher() {
	s.fallbackWatcherStopOnce.Do(func() {
		if s.fallbackWatcher != nil {
			_ = s.fallbackWatcher.Close()
		}
	})
}

func (s *Server) handleDidOpen(params json.RawMessage) {
	var p protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Error("didOpen: bad params", "err", err)
		return
	}
	if _, ok := uriToFilePath(p.TextDocument.URI); !ok {
		s.logNotify(protocol.MessageTypeInfo, fmt.Sprintf("jvl: skipping non-file URI: %s", p.TextDocument.URI))
		return
	}

	s.documents.open(p.TextDocument.URI, p.TextDocument.Version, p.TextDocument.Text)
	s.spawnValidation(p.TextDocument.URI)
}

func (s *Server) handleDidChange(params json.RawMessage) {
	var p protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Error("didChange: bad params", "err", err)
		return
	}
	if len(p.ContentChanges) == 0 {
		return
	}
	// Full sync: the client sends exactly one change, the entire document.
	text := p.ContentChanges[0].Text

	if _, ok := s.documents.update(p.TextDocument.URI, p.TextDocument.Version, text); !ok {
		return
	}
	s.spawnValidation(p.TextDocument.URI)
}

func (s *Server) handleDidClose(params json.RawMessage) {
	var p protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Error("didClose: bad params", "err", err)
		return
	}

	// Remove from the store first so any validation still in flight for
	// this document discards its result instead of publishing it.
	s.documents.close(p.TextDocument.URI)

	if err := s.conn.WriteNotification("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         p.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	}); err != nil {
		s.logger.Error("clear diagnostics on close", "err", err)
	}
}

func (s *Server) handleDidChangeWatchedFiles(params json.RawMessage) {
	var p protocol.DidChangeWatchedFilesParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Error("didChangeWatchedFiles: bad params", "err", err)
		return
	}

	for _, change := range p.Changes {
		if filePath, ok := uriToFilePath(change.URI); ok && filepath.Base(filePath) == "jvl.json" {
			s.configCache.Invalidate(filePath)
		}
	}

	s.revalidateAllOpenDocuments()
}

func (s *Server) encodingSnapshot() coords.Encoding {
	s.encMu.RLock()
	defer s.encMu.RUnlock()
	return s.enc
}

func (s *Server) logNotify(t protocol.MessageType, msg string) {
	if err := s.conn.WriteNotification("window/logMessage", protocol.LogMessageParams{Type: t, Message: msg}); err != nil {
		s.logger.Error("write log message", "err", err)
	}
}

func (s *Server) logWarning(msg string) {
	s.logNotify(protocol.MessageTypeWarning, msg)
}
