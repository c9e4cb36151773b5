// Package constants provides a set of common OpenPGP constants.
package constants

// Version identifies this module in the armor header comment.
const Version = "0.1.0"

// ArmorHeaderEnabled controls whether ArmorHeaderVersion/ArmorHeaderComment
// are included in the default armor headers.
const ArmorHeaderEnabled = true

// Constants for armored data.
const (
	ArmorHeaderVersion = "deltamsg-core " + Version
	ArmorHeaderComment = "https://github.com/deltamsg/core"
	PGPMessageHeader   = "PGP MESSAGE"
	PGPSignatureHeader = "PGP SIGNATURE"
	PublicKeyHeader    = "PGP PUBLIC KEY BLOCK"
	PrivateKeyHeader   = "PGP PRIVATE KEY BLOCK"
)
