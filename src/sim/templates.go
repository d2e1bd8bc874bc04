package sim

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name        string  //template name
	Descr       string  //template descr
	Coordinates [][]int //array of [x,y] coordinates
}

//built-in templates, see BuiltinTemplates
var (
	SampleTemplate = Template{
		"sample",
		"the test sample with 3 stable patterns",
		[][]int{
			{1, 1}, {1, 2},
			{2, 1}, {2, 2},
			{3, 3},
			{4, 2},
			{4, 3},
			{5, 3},
		},
	}
	BlockTemplate = Template{
		"block",
		"2x2 still life",
		[][]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}},
	}
	BlinkerTemplate = Template{
		"blinker",
		"period 2 oscillator",
		[][]int{{1, 2}, {2, 2}, {3, 2}},
	}
	GliderTemplate = Template{
		"glider",
		"moves one cell diagonally every 4 generations",
		[][]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}},
	}
	DiehardTemplate = Template{
		"diehard",
		"methuselah that vanishes after 130 generations",
		[][]int{{6, 0}, {0, 1}, {1, 1}, {1, 2}, {5, 2}, {6, 2}, {7, 2}},
	}
)

//StripesTemplate fills every cell whose linear index is even or a multiple of 7
func StripesTemplate(width int, height int) Template {
	vc := make([][]int, 0, width*height/2+1)
	for i := 0; i < width*height; i++ {
		if i%2 == 0 || i%7 == 0 {
			vc = append(vc, []int{i % width, i / width})
		}
	}
	return Template{"stripes", "every even cell and every 7th cell", vc}
}

//BuiltinTemplates returns the templates every simulator knows
func BuiltinTemplates(width int, height int) []Template {
	return []Template{
		SampleTemplate,
		BlockTemplate,
		BlinkerTemplate,
		GliderTemplate,
		DiehardTemplate,
		StripesTemplate(width, height),
	}
}
