// Package discovery locates otpgate verification services via mDNS/DNS-SD.
//
// Services announce themselves as "_otpgate._tcp" instances on the local
// domain. The prompt uses Browse/FindFirst to resolve a LAN verifier when
// started with --discover; the server uses Announce to publish itself.
package discovery
