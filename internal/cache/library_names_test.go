package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"weeklygrind/plan-tracker/internal/cache"
	"weeklygrind/plan-tracker/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLibraryNames_CachesHits(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := NewMockLibraryLookup(ctrl)
	metricsManager := metrics.NewTestManager()
	names := cache.NewLibraryNames(next, 1, time.Hour, metricsManager)

	squat, press := primitive.NewObjectID(), primitive.NewObjectID()
	next.EXPECT().
		LibraryNames(gomock.Any(), []primitive.ObjectID{squat, press}).
		Return(map[primitive.ObjectID]string{squat: "Goblet Squat", press: "Floor Press"}, nil).
		Times(1)

	got, err := names.LibraryNames(context.Background(), []primitive.ObjectID{squat, press})
	require.NoError(t, err)
	assert.Equal(t, "Goblet Squat", got[squat])

	// second call is served from the cache
	got, err = names.LibraryNames(context.Background(), []primitive.ObjectID{press, squat})
	require.NoError(t, err)
	assert.Equal(t, "Floor Press", got[press])
	assert.Len(t, got, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(metricsManager.CounterNameCacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metricsManager.CounterNameCacheLookups.WithLabelValues("hit")))
}

func TestLibraryNames_OnlyMissesGoToNext(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := NewMockLibraryLookup(ctrl)
	names := cache.NewLibraryNames(next, 1, time.Hour, metrics.NewTestManager())

	known, unknown := primitive.NewObjectID(), primitive.NewObjectID()
	gomock.InOrder(
		next.EXPECT().
			LibraryNames(gomock.Any(), []primitive.ObjectID{known}).
			Return(map[primitive.ObjectID]string{known: "Row"}, nil),
		// unknown ids are not cached and are asked for again
		next.EXPECT().
			LibraryNames(gomock.Any(), []primitive.ObjectID{unknown}).
			Return(map[primitive.ObjectID]string{}, nil).
			Times(2),
	)

	_, err := names.LibraryNames(context.Background(), []primitive.ObjectID{known})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		got, err := names.LibraryNames(context.Background(), []primitive.ObjectID{known, unknown})
		require.NoError(t, err)
		assert.Equal(t, map[primitive.ObjectID]string{known: "Row"}, got)
	}
}

func TestLibraryNames_PropagatesErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := NewMockLibraryLookup(ctrl)
	names := cache.NewLibraryNames(next, 1, time.Hour, metrics.NewTestManager())

	boom := errors.New("mongo down")
	next.EXPECT().LibraryNames(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := names.LibraryNames(context.Background(), []primitive.ObjectID{primitive.NewObjectID()})
	assert.ErrorIs(t, err, boom)
}
