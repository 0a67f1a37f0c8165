// Package treefile reads and writes trees as JSON or YAML documents.
//
// A document is the root record with nested children:
//
//	name: ""
//	type: root
//	root_path: ""
//	url: https://gitlab.example.com
//	children:
//	  - name: backend
//	    type: group
//	    root_path: /backend
//	    children:
//	      - name: api
//	        type: repository
//	        root_path: /backend/api
//	        url: git@gitlab.example.com:backend/api.git
//
// Files written by older tools that use "project" as the repository type
// are accepted.
package treefile
