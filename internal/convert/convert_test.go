package convert

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPlainTextConverterSplitsOnFormFeed(t *testing.T) {
	chunks, err := PlainTextConverter{}.Convert(context.Background(), "a.txt", []byte("\ufeffPostavy:\nEVA\f\f00:00:01 EVA\tAhoj"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != "Postavy:\nEVA" {
		t.Fatalf("expected BOM stripped, got %q", chunks[0])
	}
}

func TestPlainTextConverterNormalizesNFC(t *testing.T) {
	chunks, err := PlainTextConverter{}.Convert(context.Background(), "a.txt", []byte("S\u030cTEFAN"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks[0] != "\u0160TEFAN" {
		t.Fatalf("expected composed form, got %q", chunks[0])
	}
}

func TestPlainTextConverterRejectsBinary(t *testing.T) {
	_, err := PlainTextConverter{}.Convert(context.Background(), "a.txt", []byte{0xff, 0xfe, 0x00})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDispatcherWithoutRemote(t *testing.T) {
	d := Dispatcher{}
	if _, err := d.Convert(context.Background(), "script.docx", []byte("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	chunks, err := d.Convert(context.Background(), "script.TXT", []byte("EVA\tAhoj"))
	if err != nil || len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %v %v", chunks, err)
	}
}

func TestHTTPConverter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/convert" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		raw, _ := base64.StdEncoding.DecodeString(body.Content)
		_ = json.NewEncoder(w).Encode(responseBody{Chunks: []string{body.Filename, string(raw)}})
	}))
	defer srv.Close()

	d := Dispatcher{Remote: HTTPConverter{BaseURL: srv.URL}}
	chunks, err := d.Convert(context.Background(), "script.docx", []byte("obsah"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 || chunks[0] != "script.docx" || chunks[1] != "obsah" {
		t.Fatalf("unexpected chunks %v", chunks)
	}
}

func TestHTTPConverterStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnsupportedMediaType)
	}))
	defer srv.Close()

	_, err := HTTPConverter{BaseURL: srv.URL}.Convert(context.Background(), "x.pdf", nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
