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

// hybridirqd is a daemon that periodically rebalances hardware
// interrupt affinity across heterogeneous (big/little) CPU cores.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hybridirq/hybridirq/pkg/balancer"
	"github.com/hybridirq/hybridirq/pkg/healthz"
	"github.com/hybridirq/hybridirq/pkg/irq"
	logger "github.com/hybridirq/hybridirq/pkg/log"
	"github.com/hybridirq/hybridirq/pkg/sysfs"
)

var log = logger.NewLogger("main")

func main() {
	flag.Parse()

	cfg := balancer.DefaultConfig()
	if opt.ConfigFile != "" {
		var err error
		if cfg, err = balancer.ReadConfig(opt.ConfigFile); err != nil {
			log.Error("%v", err)
			os.Exit(1)
		}
	}

	if opt.HostRoot != "" {
		sysfs.SetSysRoot(opt.HostRoot)
		irq.SetProcRoot(opt.HostRoot)
	}

	sys := sysfs.NewSystem(cfg.ThermalZone)
	irqs := irq.NewInterrupts()

	b, err := balancer.New(cfg, sys, irqs)
	if err != nil {
		log.Error("failed to create balancer: %v", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(b.Collector())
	healthz.RegisterHealthChecker("balancer", b.Healthy)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/enabled", enableControl(b))
	healthz.Setup(mux)

	ln, err := net.Listen("tcp", opt.HTTPAddr)
	if err != nil {
		log.Error("failed to listen on %s: %v", opt.HTTPAddr, err)
		os.Exit(1)
	}

	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed: %v", err)
		}
	}()

	b.Start()
	log.Info("hybridirqd up, serving on %s", opt.HTTPAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info("received %v, shutting down...", s)

	b.Stop()
	srv.Close()
	logger.Flush()
}

// enableControl is the operator toggle: GET returns the current state,
// PUT or POST with a boolean body changes it.
func enableControl(b *balancer.Balancer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			fmt.Fprintf(w, "%v\n", b.Enabled())

		case http.MethodPut, http.MethodPost:
			body, err := io.ReadAll(io.LimitReader(req.Body, 64))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			enabled, err := strconv.ParseBool(strings.TrimSpace(string(body)))
			if err != nil {
				http.Error(w, "expected true or false", http.StatusBadRequest)
				return
			}
			b.SetEnabled(enabled)
			fmt.Fprintf(w, "%v\n", b.Enabled())

		default:
			http.Error(w, "unsupported method", http.StatusMethodNotAllowed)
		}
	}
}
