package forge

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUploadObjectCreatesBucketOnFirstUse(t *testing.T) {
	var bucketCreated bool
	var uploadedBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/authentication/v2/token":
			w.Write([]byte(`{"access_token":"tok","expires_in":3599}`))

		case r.URL.Path == "/oss/v2/buckets/test-bucket/details":
			if bucketCreated {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}

		case r.URL.Path == "/oss/v2/buckets" && r.Method == http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), `"policyKey":"persistent"`) {
				t.Errorf("bucket creation body %s missing persistent policy", body)
			}
			bucketCreated = true
			w.Write([]byte(`{"bucketKey":"test-bucket"}`))

		case strings.HasPrefix(r.URL.Path, "/oss/v2/buckets/test-bucket/objects/") && r.Method == http.MethodPut:
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("upload auth header = %q", got)
			}
			body, _ := io.ReadAll(r.Body)
			uploadedBody = string(body)
			w.Write([]byte(`{
				"bucketKey":"test-bucket",
				"objectId":"urn:adsk.objects:os.object:test-bucket/a.dwg",
				"objectKey":"a.dwg",
				"sha1":"abc123",
				"size":3,
				"location":"https://oss.example.com/test-bucket/a.dwg"
			}`))

		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(testForgeConfig(srv.URL), testLogger())
	oss := NewOSSService(testForgeConfig(srv.URL), client, testLogger())

	result, err := oss.UploadObject(context.Background(), "a.dwg", []byte("cad"))
	if err != nil {
		t.Fatalf("UploadObject: %v", err)
	}

	if !bucketCreated {
		t.Error("bucket was not created on first use")
	}
	if uploadedBody != "cad" {
		t.Errorf("uploaded body = %q, want cad", uploadedBody)
	}
	if result.ObjectID != "urn:adsk.objects:os.object:test-bucket/a.dwg" {
		t.Errorf("objectId = %q", result.ObjectID)
	}
	if result.Size != 3 || result.SHA1 != "abc123" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestUploadObjectExistingBucket(t *testing.T) {
	var createCalled bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/authentication/v2/token":
			w.Write([]byte(`{"access_token":"tok","expires_in":3599}`))
		case r.URL.Path == "/oss/v2/buckets/test-bucket/details":
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/oss/v2/buckets":
			createCalled = true
			w.WriteHeader(http.StatusConflict)
		case r.Method == http.MethodPut:
			w.Write([]byte(`{"objectId":"oid","objectKey":"a.dwg","size":3}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(testForgeConfig(srv.URL), testLogger())
	oss := NewOSSService(testForgeConfig(srv.URL), client, testLogger())

	if _, err := oss.UploadObject(context.Background(), "a.dwg", []byte("cad")); err != nil {
		t.Fatalf("UploadObject: %v", err)
	}
	if createCalled {
		t.Error("bucket creation attempted although bucket exists")
	}
}

func TestUploadObjectUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/authentication/v2/token":
			w.Write([]byte(`{"access_token":"tok","expires_in":3599}`))
		case strings.HasSuffix(r.URL.Path, "/details"):
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"reason":"quota exceeded"}`))
		}
	}))
	defer srv.Close()

	client := NewClient(testForgeConfig(srv.URL), testLogger())
	oss := NewOSSService(testForgeConfig(srv.URL), client, testLogger())

	_, err := oss.UploadObject(context.Background(), "a.dwg", []byte("cad"))
	if err == nil {
		t.Fatal("expected error on upload failure")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %v does not carry the status code", err)
	}
}
