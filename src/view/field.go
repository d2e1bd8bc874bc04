package view

import "strings"

//Field turns the packed universe state into text, one filler per cell
type Field struct {
	Live string
	Dead string
}

//Rows decodes bits (row-major, bit idx at byte idx/8 mask 1<<(idx%8)) into one string per row
//maxW and maxH crop the output when positive, crop reports whether something was cut
func (f Field) Rows(bits []byte, width int, height int, maxW int, maxH int) (rows []string, crop bool) {
	w, h := width, height
	if maxW > 0 && w > maxW {
		w = maxW
		crop = true
	}
	if maxH > 0 && h > maxH {
		h = maxH
		crop = true
	}
	rows = make([]string, 0, h)
	var b strings.Builder
	for y := 0; y < h; y++ {
		b.Reset()
		for x := 0; x < w; x++ {
			idx := y*width + x
			if bits[idx>>3]&(1<<uint(idx&7)) != 0 {
				b.WriteString(f.Live)
			} else {
				b.WriteString(f.Dead)
			}
		}
		rows = append(rows, b.String())
	}
	return
}
