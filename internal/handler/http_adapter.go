package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
)

// HTTPTriggerRequest represents the structure of the JSON payload for HTTP triggers.
type HTTPTriggerRequest struct {
	Data struct {
		Req struct {
			URL             string              `json:"Url"`
			Method          string              `json:"Method"`
			Query           map[string]string   `json:"Query"`
			Headers         map[string][]string `json:"Headers"`
			Params          map[string]string   `json:"Params"`
			Body            string              `json:"Body"`
			IsBase64Encoded bool                `json:"isBase64Encoded"`
		} `json:"req"`
	} `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// HTTPTriggerResponse represents the structure of the JSON response for HTTP triggers.
type HTTPTriggerResponse struct {
	Outputs struct {
		Res struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       string            `json:"body"`
		} `json:"res"`
	} `json:"Outputs"`
	Logs        []string `json:"Logs,omitempty"`
	ReturnValue any      `json:"ReturnValue,omitempty"`
}

// HandleHttpTrigger adapts the Azure Functions JSON POST request to a standard HTTP request/response.
// It wraps the provided next handler (usually the ServeMux), so the wrapped
// request passes through the same authentication as a direct one.
func (d *Dependencies) HandleHttpTrigger(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var invokeReq HTTPTriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&invokeReq); err != nil {
			slog.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}

		reqData := invokeReq.Data.Req
		target, err := url.Parse(reqData.URL)
		if err != nil || reqData.Method == "" {
			slog.Error("invalid wrapped HTTP request", "method", reqData.Method, "url", reqData.URL, "error", err)
			http.Error(w, "Invalid wrapped request", http.StatusBadRequest)
			return
		}
		if target.RawQuery == "" && len(reqData.Query) > 0 {
			q := url.Values{}
			for k, v := range reqData.Query {
				q.Set(k, v)
			}
			target.RawQuery = q.Encode()
		}
		// Only the public API is reachable through the envelope. Host
		// triggers such as /ProcessQueue and the adapter itself are not.
		target.Path = path.Clean("/" + target.Path)
		if !strings.HasPrefix(target.Path, "/api/") {
			slog.Warn("rejected wrapped request outside /api", "method", reqData.Method, "path", target.Path)
			http.Error(w, "Invalid wrapped request", http.StatusBadRequest)
			return
		}

		headers := http.Header{}
		for k, v := range reqData.Headers {
			for _, val := range v {
				headers.Add(k, val)
			}
		}

		newReq, err := http.NewRequestWithContext(r.Context(), reqData.Method, target.String(), wrappedBody(reqData.Body, reqData.IsBase64Encoded, headers.Get("Content-Type")))
		if err != nil {
			slog.Error("failed to create internal request", "error", err)
			http.Error(w, "Failed to create internal request", http.StatusInternalServerError)
			return
		}
		newReq.Header = headers

		slog.Debug("internal request prepared",
			"method", newReq.Method,
			"path", newReq.URL.Path,
			"content_type", newReq.Header.Get("Content-Type"),
			"header_count", len(headers),
		)

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, newReq)

		respResult := recorder.Result()
		respBodyBytes, _ := io.ReadAll(respResult.Body)
		respResult.Body.Close()

		respHeaders := make(map[string]string, len(respResult.Header))
		for k, v := range respResult.Header {
			respHeaders[k] = strings.Join(v, ", ")
		}

		jsonResp := HTTPTriggerResponse{}
		jsonResp.Outputs.Res.StatusCode = respResult.StatusCode
		jsonResp.Outputs.Res.Headers = respHeaders
		jsonResp.Outputs.Res.Body = string(respBodyBytes)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(jsonResp); err != nil {
			slog.Error("failed to encode HTTP trigger response", "error", err)
		}
	}
}

// wrappedBody returns the request body carried in the envelope.
// Some hosts send base64 without setting isBase64Encoded, so non-JSON bodies
// that decode cleanly are treated as base64 too.
func wrappedBody(body string, isBase64 bool, contentType string) io.Reader {
	if body == "" {
		return http.NoBody
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if isBase64 || mediaType != "application/json" {
		if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
			return bytes.NewReader(decoded)
		} else if isBase64 {
			slog.Warn("body flagged as base64 failed to decode, using raw", "error", err)
		}
	}
	return strings.NewReader(body)
}
