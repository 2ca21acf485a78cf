// Package manifest loads HCL manifests that describe the expected export
// surface of an extension and checks a loaded extension against them.
//
// A manifest looks like:
//
//	namespace "Servactory::HelloRust" {
//	  constant "VERSION" {
//	    type = string
//	  }
//	  function "hello" {
//	    params  = [string]
//	    returns = string
//	  }
//	}
package manifest
