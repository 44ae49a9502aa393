package transport

// shotgunPagination is fired, one command at a time, when the vendor driver
// reports no pagination command for its platform. Wrong commands on a given
// platform just produce a harmless CLI error that gets discarded.
var shotgunPagination = []string{
	"terminal length 0",
	"terminal pager 0",
	"set cli screen-length 0",
	"screen-length 0 temporary",
	"disable clipaging",
	"terminal more disable",
	"no page",
	"set cli pager off",
}
