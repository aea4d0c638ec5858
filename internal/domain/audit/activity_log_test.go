package audit

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActivityLog(t *testing.T) {
	userID := uuid.New()
	nilID := uuid.Nil
	log, err := NewActivityLog(Entry{
		TenantID:    uuid.New(),
		UserID:      &userID,
		UserName:    " Ana ",
		Action:      ActionCreate,
		EntityType:  "Booking",
		EntityID:    &nilID,
		Description: strings.Repeat("x", 600),
		Metadata:    map[string]any{"number": "LOC-000001"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", log.UserName)
	assert.Nil(t, log.EntityID)
	assert.Len(t, log.Description, 500)
	assert.False(t, log.CreatedAt.IsZero())
	assert.NotEqual(t, uuid.Nil, log.ID)

	_, err = NewActivityLog(Entry{TenantID: uuid.New(), Action: "VIEW"})
	assert.Error(t, err)
	_, err = NewActivityLog(Entry{Action: ActionLogin})
	assert.Error(t, err)
}
