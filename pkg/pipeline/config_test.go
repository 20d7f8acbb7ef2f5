package pipeline

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degrader/pkg/degrade"
)

func TestParseConfigsYAML(t *testing.T) {
	configs, err := ParseConfigs([]byte(`
- name: blur
  params:
    kernel_size: 7
    sigma: 2.0
- name: compression
  params: {format: png, quality: 4}
- name: interlace
`))
	require.NoError(t, err)
	require.Len(t, configs, 3)

	assert.Equal(t, degrade.Blur, configs[0].Name)
	assert.Equal(t, degrade.Params{"kernel_size": 7, "sigma": 2.0}, configs[0].Params)
	assert.Equal(t, []string{"kernel_size", "sigma"}, configs[0].Keys())
	assert.Equal(t, "png", configs[1].Params["format"])
	assert.Empty(t, configs[2].Params)
}

func TestParseConfigsJSON(t *testing.T) {
	doc := `[{"name": "composite", "params": {"shake": {"displacement": 2}, "dirt": {"num_spots": 1}}},` +
		`{"name": "noise", "params": {"noise_type": "poisson"}}]`
	configs, err := ParseConfigs([]byte(doc))
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, []string{"shake", "dirt"}, configs[0].Keys())
}

func TestParseConfigsErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		doc   string
		index int
		entry string
	}{
		"not a list":    {`{name: blur}`, 0, ""},
		"empty":         {``, 0, ""},
		"broken":        {`- name: [`, 0, ""},
		"scalar entry":  {"- name: blur\n- 3", 2, ""},
		"missing name":  {"- name: blur\n- params: {}", 2, ""},
		"list params":   {"- name: blur\n  params: [1, 2]", 1, "blur"},
		"mapping name":  {"- name: {a: 1}", 1, ""},
		"scalar params": {"- name: noise\n- name: blur\n  params: 3", 2, "blur"},
		"empty name":    {"- name: ''", 1, ""},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfigs([]byte(tc.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, degrade.ErrInvalidConfig))

			var ce *degrade.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.index, ce.Index)
			assert.Equal(t, tc.entry, ce.Name)
		})
	}
}

func TestConfigKeysFallBackToSorted(t *testing.T) {
	c := NewConfig(Composite, degrade.Params{"noise": nil, "blur": nil})
	assert.Equal(t, []string{"blur", "noise"}, c.Keys())
}
