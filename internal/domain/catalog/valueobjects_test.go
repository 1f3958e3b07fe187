package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBool_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr bool
	}{
		{"boolean true", `true`, true, false},
		{"boolean false", `false`, false, false},
		{"number one", `1`, true, false},
		{"number zero", `0`, false, false},
		{"string one", `"1"`, true, false},
		{"string zero", `"0"`, false, false},
		{"string true", `"true"`, true, false},
		{"string false", `"false"`, false, false},
		{"empty string", `""`, false, false},
		{"garbage string", `"maybe"`, false, true},
		{"null is rejected", `null`, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexBool
			err := json.Unmarshal([]byte(tc.input), &f)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, f.Bool())
		})
	}
}

func TestFlexBool_MarshalIsCanonical(t *testing.T) {
	out, err := json.Marshal(FlexBool(true))
	require.NoError(t, err)
	assert.Equal(t, `true`, string(out))
}

func TestFlexBool_Scan(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{"bool", true, true},
		{"int64 one", int64(1), true},
		{"int64 zero", int64(0), false},
		{"bytes one", []byte("1"), true},
		{"string true", "true", true},
		{"nil", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexBool
			require.NoError(t, f.Scan(tc.input))
			assert.Equal(t, tc.want, f.Bool())
		})
	}
}

func TestNewEntitlement_EmptyExternalMappingBecomesNil(t *testing.T) {
	empty := ""
	e, err := NewEntitlement("ent_1", "res_1", "tenant-1", "Reporting Viewer", RiskLevelLow, false, &empty)
	require.NoError(t, err)
	assert.Nil(t, e.ExternalMapping())
	assert.False(t, e.IsExternallyManaged())
}

func TestNewBlueprint_DeduplicatesEntitlements(t *testing.T) {
	b, err := NewBlueprint("bpt_1", "tenant-1", "Analyst", "dep_1",
		[]string{"ent_1", "ent_2", "ent_1", "", "ent_3"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ent_1", "ent_2", "ent_3"}, b.EntitlementIDs())
	assert.True(t, b.Includes("ent_2"))
	assert.False(t, b.Includes("ent_9"))
}
