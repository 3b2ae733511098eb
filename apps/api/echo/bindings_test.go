package echoapi

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/shepherdcrm/shepherd/core"
)

func TestOrderingBind(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []core.DBOrdering
	}{
		{name: "no param", query: ""},
		{name: "empty value", query: "ordering="},
		{name: "single field", query: "ordering=name", want: []core.DBOrdering{{Field: "name", Ascending: true}}},
		{name: "descending", query: "ordering=-created_at", want: []core.DBOrdering{{Field: "created_at"}}},
		{
			name:  "multiple with spaces",
			query: "ordering=first_name,%20-created_at",
			want: []core.DBOrdering{
				{Field: "first_name", Ascending: true},
				{Field: "created_at"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			ctx := echo.New().NewContext(req, httptest.NewRecorder())

			ord := new(Ordering)
			ord.Bind(ctx)
			if !reflect.DeepEqual(ord.Orderings, tt.want) {
				t.Errorf("Orderings = %v, want %v", ord.Orderings, tt.want)
			}
		})
	}
}
