package session

import (
	"testing"
	"time"

	"github.com/leapstack-labs/leapclean/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset(t *testing.T) *core.Dataset {
	t.Helper()
	ds, err := core.NewDataset([]*core.Column{
		core.NewNumericColumn("x", []float64{1, 2, 3}, nil),
	})
	require.NoError(t, err)
	return ds
}

func TestCreateLoadSave(t *testing.T) {
	s := NewStore()
	id := s.Create("data.csv", testDataset(t))

	ds, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Rows())

	name, err := s.Name(id)
	require.NoError(t, err)
	assert.Equal(t, "data.csv", name)

	clone := ds.Clone()
	require.NoError(t, clone.FilterRows([]bool{true, false, true}))
	require.NoError(t, s.Save(id, clone))

	again, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Rows())
}

func TestLoadUnknownSession(t *testing.T) {
	s := NewStore()
	_, err := s.Load("nope")
	var notFound *core.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.ID)
}

func TestLogAppendOrder(t *testing.T) {
	s := NewStore()
	id := s.Create("data.csv", testDataset(t))

	require.NoError(t, s.AppendLog(id, core.LogEntry{Step: "Load Data"}))
	require.NoError(t, s.AppendLog(id, core.LogEntry{Step: "Handle Missing Values"}))

	log, err := s.Log(id)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "Load Data", log[0].Step)
	assert.Equal(t, "Handle Missing Values", log[1].Step)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := NewStore()
	id := s.Create("data.csv", testDataset(t))

	s.Delete(id)
	s.Delete(id)

	_, err := s.Load(id)
	assert.Error(t, err)
}

func TestSweepReapsIdleSessions(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewStore(WithTTL(time.Hour), WithClock(clock))

	stale := s.Create("old.csv", testDataset(t))
	now = now.Add(2 * time.Hour)
	fresh := s.Create("new.csv", testDataset(t))

	assert.Equal(t, 1, s.Sweep())
	_, err := s.Load(stale)
	assert.Error(t, err)
	_, err = s.Load(fresh)
	assert.NoError(t, err)
}

func TestSweepWithoutTTLIsNoOp(t *testing.T) {
	s := NewStore()
	s.Create("data.csv", testDataset(t))
	assert.Zero(t, s.Sweep())
}

func TestListSnapshotsSessions(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return now }))

	s.Create("a.csv", testDataset(t))
	now = now.Add(time.Minute)
	s.Create("b.csv", testDataset(t))

	infos := s.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "a.csv", infos[0].Name)
	assert.Equal(t, "b.csv", infos[1].Name)
	assert.Equal(t, 3, infos[0].Rows)
}
