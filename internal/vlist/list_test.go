package vlist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewListFirstVacantIsOne(t *testing.T) {
	l := New()
	require.Equal(t, 1, l.Next(0))
}

func TestExpandThreadsNewIndicesOntoList(t *testing.T) {
	l := New()
	l.Expand(5)
	// Walking from the sentinel should visit every tracked index in order.
	var visited []int
	for i := l.Next(0); i < 5; i = l.Next(i) {
		visited = append(visited, i)
	}
	require.Equal(t, []int{1, 2, 3, 4}, visited)
}

func TestUseRemovesIndexFromTraversal(t *testing.T) {
	l := New()
	l.Expand(5)
	l.Use(2)

	var visited []int
	for i := l.Next(0); i < 5; i = l.Next(i) {
		visited = append(visited, i)
	}
	require.Equal(t, []int{1, 3, 4}, visited)
}

func TestUseAtTrackedBoundaryGrowsListBySuccessor(t *testing.T) {
	l := New()
	l.Expand(2) // tracks indices 0,1; Use(1) below needs its successor's slot
	l.Use(1)
	require.Equal(t, 2, l.Next(0))
}

func TestUseAllLeavesEmptyTraversal(t *testing.T) {
	l := New()
	l.Expand(4)
	l.Use(1)
	l.Use(2)
	l.Use(3)
	require.GreaterOrEqual(t, l.Next(0), 4)
}
