// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides utility functions for generating planar point sets
// for triangulation.

package utils

import (
	"math/rand"

	"github.com/golang/geo/r2"
)

// GenerateRandomPoints generates a vector of random points in the square
// [0, 100) x [0, 100). The seed parameter ensures reproducibility.
func GenerateRandomPoints(cnt int, seed int64) []r2.Point {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	points := make([]r2.Point, cnt)

	for i := range cnt {
		points[i] = r2.Point{
			X: random.Float64() * 100,
			Y: random.Float64() * 100,
		}
	}

	return points
}

// GenerateGridPoints generates an nx by ny grid of points with the given
// spacing, starting at the origin and ordered row by row.
func GenerateGridPoints(nx, ny int, spacing float64) []r2.Point {
	points := make([]r2.Point, 0, nx*ny)
	for j := range ny {
		for i := range nx {
			points = append(points, r2.Point{
				X: float64(i) * spacing,
				Y: float64(j) * spacing,
			})
		}
	}
	return points
}
