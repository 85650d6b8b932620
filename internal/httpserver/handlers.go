package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disiqueira/httpserver/internal/clock"
	"github.com/disiqueira/httpserver/internal/config"
	"github.com/disiqueira/httpserver/internal/pathguard"
	"github.com/disiqueira/httpserver/internal/wire"
)

// octetStreamExts are always downloaded as attachments regardless of their
// true content.
var octetStreamExts = map[string]bool{
	".txt":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// handleGET resolves the request target under the document root and serves
// it with a content type chosen from its extension, or answers with the
// appropriate error status when the target is forbidden, missing, or of an
// extension this server won't serve.
func handleGET(req *wire.Request, cfg *config.ServerConfig, log *slog.Logger) *wire.Response {
	path, err := pathguard.Resolve(req.Target, cfg.DocumentRoot)
	if err != nil {
		var guardErr *pathguard.Error
		if errors.As(err, &guardErr) {
			switch guardErr.Reason {
			case pathguard.Forbidden:
				log.Warn("security event", "event", "Path traversal attempt - "+req.Target)
				return errorResponse(403)
			case pathguard.NotFound:
				return errorResponse(404)
			}
		}
		return errorResponse(500)
	}

	ext := strings.ToLower(filepath.Ext(path))
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		log.Error("failed reading file", "path", path, "error", readErr)
		return errorResponse(500)
	}

	switch {
	case ext == ".html":
		resp := wire.NewResponse(200, content)
		resp.Headers.Set("Content-Type", "text/html; charset=utf-8")
		return resp
	case octetStreamExts[ext]:
		resp := wire.NewResponse(200, content)
		resp.Headers.Set("Content-Type", "application/octet-stream")
		resp.Headers.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
		return resp
	default:
		return plainTextResponse(415, "Unsupported Media Type")
	}
}

// uploadResult is the JSON body returned after a successful upload.
type uploadResult struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Filepath string `json:"filepath"`
}

// handlePOST accepts a JSON body, re-serializes it to a timestamped file
// under the upload directory, and reports the stored path back to the
// caller.
func handlePOST(req *wire.Request, cfg *config.ServerConfig, log *slog.Logger) *wire.Response {
	contentType, _ := req.Header("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return textErrorResponse(415, "Unsupported Media Type")
	}

	var parsed any
	if err := json.Unmarshal(req.Body, &parsed); err != nil {
		return errorResponse(400)
	}

	now := time.Now()
	filename := fmt.Sprintf("upload_%s_%s.json", clock.UploadTimestamp(now), clock.RandomToken4())

	uploadDir := filepath.Join(cfg.DocumentRoot, cfg.UploadSubdir)
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Error("failed creating upload dir", "dir", uploadDir, "error", err)
		return errorResponse(500)
	}

	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		log.Error("failed re-serializing upload", "error", err)
		return errorResponse(500)
	}

	diskPath := filepath.Join(uploadDir, filename)
	if err := os.WriteFile(diskPath, pretty, 0o644); err != nil {
		log.Error("failed writing upload", "path", diskPath, "error", err)
		return errorResponse(500)
	}

	result := uploadResult{
		Status:   "success",
		Message:  "File created successfully",
		Filepath: "/" + cfg.UploadSubdir + "/" + filename,
	}
	body, err := json.Marshal(result)
	if err != nil {
		log.Error("failed encoding response", "error", err)
		return errorResponse(500)
	}

	resp := wire.NewResponse(201, body)
	resp.Headers.Set("Content-Type", "application/json")
	return resp
}

// errorResponse builds the default HTML error body for a status code known
// to this server.
func errorResponse(status int) *wire.Response {
	return textErrorResponse(status, wire.StatusText(status))
}

func textErrorResponse(status int, phrase string) *wire.Response {
	body := fmt.Sprintf("<!DOCTYPE html><html><head><title>%d %s</title></head>"+
		"<body><h1>%d %s</h1></body></html>", status, phrase, status, phrase)
	resp := wire.NewResponse(status, []byte(body))
	resp.Headers.Set("Content-Type", "text/html; charset=utf-8")
	return resp
}

// plainTextResponse builds an error body for cases the extension policy
// table says must come back as plain text rather than HTML.
func plainTextResponse(status int, message string) *wire.Response {
	resp := wire.NewResponse(status, []byte(message))
	resp.Headers.Set("Content-Type", "text/plain; charset=utf-8")
	return resp
}
