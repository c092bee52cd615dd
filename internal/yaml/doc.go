// Package yaml provides the YAML implementation of the config.Loader and
// config.Writer interfaces, in the layout firmware configurations are
// usually written in:
//
//	globals:
//	  - id: counter
//	    type: int
//	    initial_value: "0"
//
//	automation:
//	  - id: on_value
//	    args:
//	      - name: x
//	        type: int
//	    then:
//	      - globals.set:
//	          id: counter
//	          value: !lambda return id(counter) + x;
//
// Values tagged !lambda are C++ lambda bodies.
package yaml
