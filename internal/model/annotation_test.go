package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotation_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Annotation{SubjectID: "42", Text: "hello"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"subject_ids":"42","annotations":"hello"}`, string(data))
}

func TestResolution_Singleton(t *testing.T) {
	assert.True(t, Resolution{GroupSize: 1, PairFirst: -1, PairSecond: -1}.Singleton())
	assert.False(t, Resolution{GroupSize: 3}.Singleton())
}
