package cache

import "strings"

// KeyVIN returns the cache key for a decoded VIN.
func KeyVIN(vin string) string {
	return "vin:" + strings.ToUpper(strings.TrimSpace(vin))
}

// KeyCart returns the storage key for a session cart.
func KeyCart(session string) string {
	return "cart:" + session
}

// KeyCartLock returns the lock key guarding a session cart.
func KeyCartLock(session string) string {
	return "lock:cart:" + session
}
