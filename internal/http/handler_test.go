package httpapp

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"stemtab/internal/app"
	"stemtab/internal/constants"
	"stemtab/internal/executor"
	"stemtab/internal/pitch"
	"stemtab/internal/separation"
	"stemtab/internal/status"
	"stemtab/internal/storage"
	"stemtab/internal/store"
	"stemtab/internal/tablature"
)

type fakeEngine struct {
	stems []string
}

func (e *fakeEngine) Separate(ctx context.Context, req separation.Request, progress separation.ProgressFunc) (map[string]string, error) {
	out := make(map[string]string, len(e.stems))
	for _, name := range e.stems {
		path := filepath.Join(req.OutputDir, name+".wav")
		if err := os.WriteFile(path, []byte("stem audio"), 0644); err != nil {
			return nil, err
		}
		out[name] = path
	}
	return out, nil
}

type fakeExtractor struct {
	samples []pitch.Sample
}

func (e *fakeExtractor) Extract(ctx context.Context, path string, fmin, fmax float64) ([]pitch.Sample, error) {
	return e.samples, nil
}

type testAPI struct {
	srv     *httptest.Server
	backend *executor.LocalBackend
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()

	root := t.TempDir()
	db, err := store.NewSQLiteDB(filepath.Join(root, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	files, err := storage.NewManager(filepath.Join(root, "uploads"), filepath.Join(root, "stems"))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	engine := &fakeEngine{stems: []string{"vocals", "guitar"}}
	backend := executor.NewLocalBackend(executor.NewRunner(db, files, engine, 0, nil), nil)
	t.Cleanup(func() { backend.Close() })

	extractor := &fakeExtractor{samples: []pitch.Sample{
		{Time: 0.1, Frequency: 82.41, Confidence: 0.9},
		{Time: 0.6, Frequency: 110.0, Confidence: 0.8},
	}}

	h := NewHandler(
		app.NewFileService(db, files, constants.MaxUploadBytes, nil),
		app.NewJobService(db, files, backend, nil),
		app.NewTrackService(db, nil),
		app.NewTablatureService(db, tablature.NewMapper(extractor, nil), nil),
		status.NewPublisher(db, 20*time.Millisecond, nil),
		nil,
	)

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testAPI{srv: srv, backend: backend}
}

// testWAV builds a minimal PCM WAV: 8 kHz mono, 16-bit, one second.
func testWAV(t *testing.T) []byte {
	t.Helper()

	const (
		sampleRate = 8000
		dataSize   = sampleRate * 2
	)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func upload(t *testing.T, api *testAPI, filename string, body []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write(body)
	mw.Close()

	resp, err := http.Post(api.srv.URL+"/api/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("Upload request failed: %v", err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	api := setupAPI(t)

	resp, err := http.Get(api.srv.URL + "/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var body map[string]string
	decode(t, resp, &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("Expected ok health, got %d %v", resp.StatusCode, body)
	}
}

func TestUploadAndGetFile(t *testing.T) {
	api := setupAPI(t)

	resp := upload(t, api, "song.wav", testWAV(t))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var file map[string]interface{}
	decode(t, resp, &file)
	id, _ := file["id"].(string)
	if id == "" {
		t.Fatal("Expected file id in response")
	}
	if file["format"] != "wav" {
		t.Errorf("Expected format wav, got %v", file["format"])
	}

	resp, err := http.Get(api.srv.URL + "/api/files/" + id)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = http.Get(api.srv.URL + "/api/files/missing")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var detail map[string]string
	decode(t, resp, &detail)
	if resp.StatusCode != http.StatusNotFound || detail["detail"] != "Not found" {
		t.Errorf("Expected 404 detail body, got %d %v", resp.StatusCode, detail)
	}
}

func TestDeleteFileNoContent(t *testing.T) {
	api := setupAPI(t)

	resp := upload(t, api, "song.wav", testWAV(t))
	var file map[string]interface{}
	decode(t, resp, &file)
	id := file["id"].(string)

	req, _ := http.NewRequest(http.MethodDelete, api.srv.URL+"/api/files/"+id, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204 delete, got %d", resp.StatusCode)
	}
	if len(body) != 0 {
		t.Errorf("Expected empty body on delete, got %q", body)
	}

	resp, _ = http.Get(api.srv.URL + "/api/files/" + id)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestUploadRejectsBadFormat(t *testing.T) {
	api := setupAPI(t)

	resp := upload(t, api, "notes.txt", []byte("text"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unsupported format, got %d", resp.StatusCode)
	}
}

func TestSeparationLifecycle(t *testing.T) {
	api := setupAPI(t)

	resp := upload(t, api, "song.wav", testWAV(t))
	var file map[string]interface{}
	decode(t, resp, &file)
	fileID := file["id"].(string)

	resp, err := http.Post(api.srv.URL+"/api/separate/"+fileID, "application/json",
		strings.NewReader(`{"algorithm":"demucs","quality":"high"}`))
	if err != nil {
		t.Fatalf("Separate request failed: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", resp.StatusCode)
	}
	var job map[string]interface{}
	decode(t, resp, &job)
	jobID := job["id"].(string)
	if job["status"] != "pending" {
		t.Errorf("Expected pending job, got %v", job["status"])
	}

	api.backend.Wait()

	resp, err = http.Get(api.srv.URL + "/api/jobs/" + jobID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	decode(t, resp, &job)
	if job["status"] != "completed" {
		t.Fatalf("Expected completed job, got %v", job["status"])
	}
	tracks := job["tracks"].([]interface{})
	if len(tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(tracks))
	}

	resp, err = http.Get(api.srv.URL + "/api/jobs?skip=0&limit=10")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var jobs []map[string]interface{}
	decode(t, resp, &jobs)
	if len(jobs) != 1 {
		t.Errorf("Expected 1 listed job, got %d", len(jobs))
	}

	trackID := tracks[0].(map[string]interface{})["id"].(string)

	resp, err = http.Get(api.srv.URL + "/api/tracks/" + trackID + "/download")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 download, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
		t.Errorf("Expected attachment disposition, got %q", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "stem audio" {
		t.Errorf("Expected stem bytes, got %q", body)
	}

	resp, err = http.Get(api.srv.URL + "/api/tracks/" + trackID + "/stream")
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "inline" {
		t.Errorf("Expected inline disposition, got %q", cd)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, api.srv.URL+"/api/jobs/"+jobID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204 delete, got %d", resp.StatusCode)
	}

	resp, _ = http.Get(api.srv.URL + "/api/jobs/" + jobID)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestSeparateValidation(t *testing.T) {
	api := setupAPI(t)

	resp := upload(t, api, "song.wav", testWAV(t))
	var file map[string]interface{}
	decode(t, resp, &file)
	fileID := file["id"].(string)

	resp, err := http.Post(api.srv.URL+"/api/separate/"+fileID, "application/json",
		strings.NewReader(`{"algorithm":"magic"}`))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown algorithm, got %d", resp.StatusCode)
	}

	resp, err = http.Post(api.srv.URL+"/api/separate/missing", "application/json",
		strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown file, got %d", resp.StatusCode)
	}
}

func TestTablatureEndpoints(t *testing.T) {
	api := setupAPI(t)

	resp := upload(t, api, "song.wav", testWAV(t))
	var file map[string]interface{}
	decode(t, resp, &file)

	resp, err := http.Post(api.srv.URL+"/api/separate/"+file["id"].(string), "application/json", nil)
	if err != nil {
		t.Fatalf("Separate request failed: %v", err)
	}
	var job map[string]interface{}
	decode(t, resp, &job)
	api.backend.Wait()

	resp, err = http.Get(api.srv.URL + "/api/jobs/" + job["id"].(string))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	decode(t, resp, &job)
	trackID := job["tracks"].([]interface{})[0].(map[string]interface{})["id"].(string)

	resp, err = http.Post(api.srv.URL+"/api/tracks/"+trackID+"/tablature", "application/json",
		strings.NewReader(`{"instrument_type":"guitar","tuning":"drop_d"}`))
	if err != nil {
		t.Fatalf("Tablature request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var tab map[string]interface{}
	decode(t, resp, &tab)
	if !strings.Contains(tab["content"].(string), "Guitar Tablature - DROP_D Tuning") {
		t.Errorf("Expected rendered content, got %v", tab["content"])
	}

	resp, err = http.Get(api.srv.URL + "/api/tracks/" + trackID + "/tablatures")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var tabs []map[string]interface{}
	decode(t, resp, &tabs)
	if len(tabs) != 1 {
		t.Errorf("Expected 1 tablature, got %d", len(tabs))
	}

	resp, err = http.Post(api.srv.URL+"/api/tracks/"+trackID+"/tablature", "application/json",
		strings.NewReader(`{"instrument_type":"theremin"}`))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown instrument, got %d", resp.StatusCode)
	}

	tabID := tab["id"].(string)
	req, _ := http.NewRequest(http.MethodDelete, api.srv.URL+"/api/tablature/"+tabID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204 delete, got %d", resp.StatusCode)
	}

	resp, _ = http.Get(api.srv.URL + "/api/tablature/" + tabID)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestJobStatusWebsocket(t *testing.T) {
	api := setupAPI(t)

	resp := upload(t, api, "song.wav", testWAV(t))
	var file map[string]interface{}
	decode(t, resp, &file)

	resp, err := http.Post(api.srv.URL+"/api/separate/"+file["id"].(string), "application/json", nil)
	if err != nil {
		t.Fatalf("Separate request failed: %v", err)
	}
	var job map[string]interface{}
	decode(t, resp, &job)

	url := "ws" + strings.TrimPrefix(api.srv.URL, "http") + "/api/jobs/" + job["id"].(string) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// Read frames until the job terminates.
	for {
		var snap map[string]interface{}
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatalf("Stream ended before terminal snapshot: %v", err)
		}
		if snap["status"] == "completed" {
			if snap["progress"].(float64) != 100 {
				t.Errorf("Expected progress 100, got %v", snap["progress"])
			}
			break
		}
	}
}
