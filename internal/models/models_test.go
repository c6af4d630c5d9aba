package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, NormalizeName("  Pikachu "), NormalizeName("PIKACHU"))
	assert.NotEqual(t, NormalizeName("Pika chu"), NormalizeName("Pikachu"))
}

func TestReviewerFullName(t *testing.T) {
	assert.Equal(t, "Ash Ketchum", Reviewer{FirstName: "Ash", LastName: "Ketchum"}.FullName())
	assert.Equal(t, "Misty", Reviewer{FirstName: "Misty"}.FullName())
	assert.Equal(t, "gary OAK", Reviewer{FirstName: " gary ", LastName: "OAK\t"}.FullName())
}
