// Package settings loads podsmith's YAML settings file.
//
// The file lives at $XDG_CONFIG_HOME/podsmith/config.yaml. Every key is
// optional: values the file omits keep their defaults, and a missing file
// yields [Defaults]. Unknown keys are rejected so typos surface early.
//
//	runtime: cli
//	binary: docker
//	timeout: 2m
//	ssh_key: ~/.ssh/podsmith_rsa
//	containerd:
//	  namespace: dev
package settings
