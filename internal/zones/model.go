// README: Zone and borough definitions for location verification.
package zones

import "payguard/internal/types"

type Zone struct {
	ID       string
	Name     string
	Borough  string
	Centroid types.Point
}
