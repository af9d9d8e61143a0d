// Package domain holds the supply-chain entities, their status enumerations
// and the derived attributes computed on read.
package domain
