// Copyright The HybridIRQ Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
)

// options captures our command line parameters.
type options struct {
	HostRoot   string
	ConfigFile string
	HTTPAddr   string
}

var opt = options{}

// Register us for command line option processing.
func init() {
	flag.StringVar(&opt.HostRoot, "host-root", "",
		"Directory prefix under which the host's sysfs and procfs are mounted.")
	flag.StringVar(&opt.ConfigFile, "config", "",
		"Configuration file to read. Built-in defaults are used if unset.")
	flag.StringVar(&opt.HTTPAddr, "http-addr", ":8891",
		"Address to serve metrics, health checks and the enable control on.")
}
