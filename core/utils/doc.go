// Package utils normalizes loosely typed JSON values returned by the platform API.
package utils
