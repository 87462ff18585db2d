package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"leadchat/internal/model"
	"leadchat/internal/repository"
)

func newTestProspectService(db *gorm.DB, publisher EventPublisher) *ProspectService {
	return NewProspectService(repository.NewProspectRepository(db), publisher, zerolog.Nop())
}

func TestCreateProspectPersistsAndPublishes(t *testing.T) {
	db := newTestDB(t)
	publisher := &capturingPublisher{}
	svc := newTestProspectService(db, publisher)

	conversationID := uint(3)
	prospect, err := svc.CreateProspect(context.Background(), CreateProspectInput{
		Name:           "  Budi Santoso ",
		Email:          "budi@example.com",
		Phone:          "+62 812 0000",
		ConversationID: &conversationID,
	})
	require.NoError(t, err)
	assert.NotZero(t, prospect.ID)
	assert.Equal(t, "Budi Santoso", prospect.Name)

	require.Len(t, publisher.events, 1)
	event, ok := publisher.events[0].(LeadEvent)
	require.True(t, ok)
	assert.Equal(t, prospect.ID, event.ProspectID)
	assert.Equal(t, "budi@example.com", event.Email)
	require.NotNil(t, event.ConversationID)
	assert.Equal(t, uint(3), *event.ConversationID)
}

func TestCreateProspectRequiresNameAndEmail(t *testing.T) {
	db := newTestDB(t)
	publisher := &capturingPublisher{}
	svc := newTestProspectService(db, publisher)

	cases := []CreateProspectInput{
		{Name: "", Email: "a@b.com"},
		{Name: "Budi", Email: ""},
		{Name: "   ", Email: "   "},
	}
	for _, input := range cases {
		_, err := svc.CreateProspect(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	var count int64
	require.NoError(t, db.Model(&model.Prospect{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	assert.Empty(t, publisher.events)
}

func TestListProspectsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newTestProspectService(db, nil)

	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"first", "second", "third"} {
		require.NoError(t, db.Create(&model.Prospect{
			Name:      name,
			Email:     name + "@example.com",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	prospects, err := svc.ListProspects()
	require.NoError(t, err)
	require.Len(t, prospects, 3)
	assert.Equal(t, "third", prospects[0].Name)
	assert.Equal(t, "first", prospects[2].Name)
}

func TestExportXLSXContainsProspectRows(t *testing.T) {
	db := newTestDB(t)
	svc := newTestProspectService(db, nil)

	_, err := svc.CreateProspect(context.Background(), CreateProspectInput{
		Name:  "Siti",
		Email: "siti@example.com",
		Phone: "0811",
	})
	require.NoError(t, err)

	raw, err := svc.ExportXLSX()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Prospects")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "Name", "Email", "Phone", "Conversation ID", "Created At"}, rows[0])
	assert.Equal(t, "Siti", rows[1][1])
	assert.Equal(t, "siti@example.com", rows[1][2])
	assert.Equal(t, "0811", rows[1][3])
}

func TestExportXLSXEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	svc := newTestProspectService(db, nil)

	raw, err := svc.ExportXLSX()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Prospects")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
