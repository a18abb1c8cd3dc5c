package ml

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailbi/pkg/contracts/domain"
)

func rfmRow(id string, recency int, frequency int64, monetary float64) domain.CustomerRFM {
	return domain.CustomerRFM{CustomerID: id, Recency: recency, Frequency: frequency, Monetary: monetary}
}

func TestClusterRFMSeparatesGroups(t *testing.T) {
	var rows []domain.CustomerRFM
	// active high-spend group
	for i := 0; i < 5; i++ {
		rows = append(rows, rfmRow(fmt.Sprintf("A%02d", i), 5+i, 50, 5000+float64(i)*10))
	}
	// dormant low-spend group
	for i := 0; i < 5; i++ {
		rows = append(rows, rfmRow(fmt.Sprintf("B%02d", i), 300+i, 1, 50+float64(i)))
	}

	result, err := ClusterRFM(rows, 2)
	require.NoError(t, err)
	require.Len(t, result, 10)

	activeCluster := result[0].Cluster
	dormantCluster := result[5].Cluster
	assert.NotEqual(t, activeCluster, dormantCluster)

	for _, r := range result[:5] {
		assert.Equal(t, activeCluster, r.Cluster, "customer %s", r.CustomerID)
	}
	for _, r := range result[5:] {
		assert.Equal(t, dormantCluster, r.Cluster, "customer %s", r.CustomerID)
	}
}

func TestClusterRFMDeterministic(t *testing.T) {
	var rows []domain.CustomerRFM
	for i := 0; i < 20; i++ {
		rows = append(rows, rfmRow(fmt.Sprintf("C%03d", i), (i*37)%200, int64(1+(i*13)%9), float64(100+(i*97)%4000)))
	}

	first, err := ClusterRFM(rows, 4)
	require.NoError(t, err)
	second, err := ClusterRFM(rows, 4)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestClusterRFMValidation(t *testing.T) {
	rows := []domain.CustomerRFM{rfmRow("C1", 10, 2, 100), rfmRow("C2", 20, 3, 200)}

	t.Run("k too small", func(t *testing.T) {
		_, err := ClusterRFM(rows, 1)
		assert.Error(t, err)
	})

	t.Run("fewer customers than clusters", func(t *testing.T) {
		_, err := ClusterRFM(rows, 3)
		assert.Error(t, err)
	})
}

func TestStandardize(t *testing.T) {
	points := [][3]float64{
		{0, 5, 100},
		{10, 5, 300},
	}
	standardize(points)

	// zero mean per column
	for d := 0; d < 3; d++ {
		assert.InDelta(t, 0, points[0][d]+points[1][d], 1e-9)
	}
	// constant column collapses to zero
	assert.Equal(t, 0.0, points[0][1])
	assert.Equal(t, 0.0, points[1][1])
}
