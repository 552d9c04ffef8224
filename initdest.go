package warp

import (
	"strconv"
	"strings"
)

// parseComplex parses a≈CPLStringToComplex-style complex literal: "a",
// "a+bi"/"a-bi", or "a,b". It is the grammar the original GDAL warper uses
// to interpret INIT_DEST when it isn't the literal "NO_DATA".
func parseComplex(s string) (real, imag float64, err error) {
	s = strings.TrimSpace(s)

	if idx := strings.IndexByte(s, ','); idx >= 0 {
		real, err = strconv.ParseFloat(strings.TrimSpace(s[:idx]), 64)
		if err != nil {
			return 0, 0, err
		}
		imag, err = strconv.ParseFloat(strings.TrimSpace(s[idx+1:]), 64)
		if err != nil {
			return 0, 0, err
		}
		return real, imag, nil
	}

	if strings.HasSuffix(s, "i") || strings.HasSuffix(s, "I") {
		body := s[:len(s)-1]
		signIdx := -1
		for i := len(body) - 1; i > 0; i-- {
			c := body[i]
			if (c == '+' || c == '-') && body[i-1] != 'e' && body[i-1] != 'E' {
				signIdx = i
				break
			}
		}
		if signIdx <= 0 {
			switch body {
			case "+":
				return 0, 1, nil
			case "-":
				return 0, -1, nil
			}
			imag, err = strconv.ParseFloat(body, 64)
			return 0, imag, err
		}
		real, err = strconv.ParseFloat(body[:signIdx], 64)
		if err != nil {
			return 0, 0, err
		}
		imagStr := body[signIdx:]
		switch imagStr {
		case "+":
			imag = 1
		case "-":
			imag = -1
		default:
			imag, err = strconv.ParseFloat(imagStr, 64)
			if err != nil {
				return 0, 0, err
			}
		}
		return real, imag, nil
	}

	real, err = strconv.ParseFloat(s, 64)
	return real, 0, err
}

// resolveInitDest determines the (real, imag) fill value for band i of the
// destination buffer: the literal "NO_DATA" resolves against configured
// destination no-data when present, otherwise (and for any other string)
// the value is parsed as a complex literal.
func resolveInitDest(initDest string, band int, dstNoData NoData) (real, imag float64, err error) {
	if initDest == "NO_DATA" && dstNoData.set() {
		return dstNoData.Real[band], dstNoData.Imag[band], nil
	}
	return parseComplex(initDest)
}
