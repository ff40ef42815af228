package common

import "time"

var StartTime = time.Now().Unix()
var Version = "v0.1.0"
