package docs

import (
	"strings"
	"testing"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("swagger info not initialized")
	}
	if SwaggerInfo.Title != "Quotechain API" {
		t.Fatalf("unexpected title: %q", SwaggerInfo.Title)
	}
	if !strings.Contains(SwaggerInfo.ReadDoc(), "/api/quotes") {
		t.Fatal("expected quote routes in the generated document")
	}
}
