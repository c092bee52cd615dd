// Package hcl provides the HCL implementation of the config.Loader and
// config.Writer interfaces.
//
// Every top-level block other than `automation` is a component block whose
// type is the component domain:
//
//	globals {
//	  id            = "counter"
//	  type          = "int"
//	  initial_value = "0"
//	}
//
//	automation "on_value" {
//	  arg "x" {
//	    type = "int"
//	  }
//	  action "globals.set" {
//	    id    = "counter"
//	    value = lambda("return id(counter) + x;")
//	  }
//	}
//
// The lambda() function marks a string as a C++ lambda body.
package hcl
