package chart

// HSL is a color in hue/saturation/lightness space. Hue is in degrees,
// saturation and lightness in percent.
type HSL struct {
	Hue        int
	Saturation int
	Lightness  int
}

const hashPrime = 31

// hashString folds a polynomial rolling hash of the string's character codes
// into an unsigned 32-bit value.
func hashString(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = h*hashPrime + uint32(r)
	}
	return h
}

// HashColor maps a username to a stable color. Three independently salted
// hashes feed the three channels, so usernames that collide in one channel
// still separate in the others. The same username always yields the same
// color within and across sessions: hue in [0,360), saturation in [40,99),
// lightness in [40,80).
func HashColor(username string) HSL {
	return HSL{
		Hue:        int(hashString("hue:"+username) % 360),
		Saturation: 40 + int(hashString("saturation:"+username)%59),
		Lightness:  40 + int(hashString("lightness:"+username)%40),
	}
}
