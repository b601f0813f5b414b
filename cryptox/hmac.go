package cryptox

// HMACSHA256 computes RFC 2104 HMAC-SHA256 of msg keyed by key.
func HMACSHA256(key, msg []byte) [Size]byte {
	blockKey := make([]byte, blockSize)
	if len(key) > blockSize {
		sum := Sum256(key)
		copy(blockKey, sum[:])
	} else {
		copy(blockKey, key)
	}

	ipad := make([]byte, blockSize)
	opad := make([]byte, blockSize)
	for i := 0; i < blockSize; i++ {
		ipad[i] = blockKey[i] ^ 0x36
		opad[i] = blockKey[i] ^ 0x5C
	}

	inner := Sum256(append(ipad, msg...))
	outer := Sum256(append(opad, inner[:]...))
	return outer
}

// HexEncode renders data as lowercase hex, matching the gateway's signature
// wire format.
func HexEncode(data []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(data)*2)
	for i, b := range data {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0x0F]
	}
	return string(out)
}
