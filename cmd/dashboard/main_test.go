package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/dashboard"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

const billsJSON = `[{"bill_id":"1","item_name":"Common fee","amount":"500","due_date":"2025-03-31","recipient_id":"all"}]`

type staticClient map[string]string

func (c staticClient) Get(_ context.Context, path string) (json.RawMessage, error) {
	if body, ok := c[path]; ok {
		return json.RawMessage(body), nil
	}
	return json.RawMessage(`[]`), nil
}

func (c staticClient) Send(context.Context, string, string, any) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func TestDraw(t *testing.T) {
	tests := []struct {
		name    string
		viewer  models.Viewer
		want    string
		notWant string
	}{
		{"resident sees bill statuses", models.Viewer{ID: "7", Role: models.RoleResident}, "DUE", "COLLECTED"},
		{"admin sees settlements only", models.Viewer{ID: "1", Role: models.RoleAdmin}, "COLLECTED", "DUE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dash, err := dashboard.New(staticClient{"/bills": billsJSON}, tt.viewer, dashboard.LogNotifier{})
			require.NoError(t, err)
			require.NoError(t, dash.RefreshAll(context.Background()))

			var buf bytes.Buffer
			require.NoError(t, draw(&buf, dash))
			assert.Contains(t, buf.String(), tt.want)
			assert.NotContains(t, buf.String(), tt.notWant)
			assert.Contains(t, buf.String(), "Common fee")
		})
	}
}
