package sim

//Controller is what a Viewer sees of the simulator: read the state and send commands
type Controller interface {
	Status() Status
	Options() Options
	Snapshot(fn func(bits []byte, width int, height int))
	AddTemplate(tmpl Template)
	SettleTemplate(name string)
	SettleWithRandomData()
	Settle(vc [][]int)
	InverseCell(x int, y int)
	RegisterViewer(v Viewer)
	Run()
	Stop()
	Step()
	Clear()
	Close()
}
