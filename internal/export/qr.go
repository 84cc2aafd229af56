package export

import (
	qrcode "github.com/skip2/go-qrcode"
)

// QRPNG genera el PNG del código QR que va en credenciales y recibos.
func QRPNG(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, 256)
}
