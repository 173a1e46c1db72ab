// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package selection implements the weighted restaurant draw ("spin").
//
// The draw uses crypto/rand over the sum of weights, which is equivalent
// to repeating each restaurant weight times and picking one slot uniformly.
package selection
