//go:build !linux

package gfx

func threadID() int { return 0 }
