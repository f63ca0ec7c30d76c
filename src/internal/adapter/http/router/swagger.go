package router

import (
	"fmt"
	"net/http"
)

func registerSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	mux.HandleFunc("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	mux.HandleFunc("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Payout Reconciler API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Payout Reconciler API",
    "version": "1.0.0"
  },
  "paths": {
    "/reconcile": {
      "post": {
        "summary": "Run a reconciliation pass over all withdrawal sources",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "responses": {
          "200": {"description": "Pass complete, summary returned"},
          "401": {"description": "Unauthorized"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/withdrawals": {
      "get": {
        "summary": "List withdrawal requests from the current snapshot",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "parameters": [
          {
            "name": "status",
            "in": "query",
            "required": false,
            "schema": {
              "type": "string",
              "enum": ["pending", "approved", "completed", "rejected"]
            }
          },
          {
            "name": "region",
            "in": "query",
            "required": false,
            "schema": {
              "type": "string",
              "enum": ["korea", "japan", "us"]
            }
          },
          {
            "name": "month",
            "in": "query",
            "required": false,
            "schema": {
              "type": "string",
              "pattern": "^[0-9]{4}-[0-9]{2}$"
            }
          }
        ],
        "responses": {
          "200": {"description": "Withdrawal requests fetched"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"}
        }
      }
    },
    "/withdrawals/approve": {
      "post": {
        "summary": "Approve a pending withdrawal request",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["requestId"],
                "properties": {
                  "requestId": {"type": "string"},
                  "priority": {"type": "integer", "minimum": 0, "maximum": 10},
                  "adminNotes": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Approved"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Request not found"},
          "409": {"description": "Request is not pending"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/withdrawals/reject": {
      "post": {
        "summary": "Reject a pending withdrawal request and refund points",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["requestId", "reason"],
                "properties": {
                  "requestId": {"type": "string"},
                  "reason": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Rejected"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Request not found"},
          "409": {"description": "Request is not pending"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/withdrawals/complete": {
      "post": {
        "summary": "Mark an approved withdrawal request as paid out",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["requestId"],
                "properties": {
                  "requestId": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Completed"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Request not found"},
          "409": {"description": "Request is not approved"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/reports/aggregate": {
      "get": {
        "summary": "Aggregate requested and completed amounts per region and status",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "responses": {
          "200": {"description": "Aggregate report"},
          "401": {"description": "Unauthorized"}
        }
      }
    },
    "/reports/audit": {
      "get": {
        "summary": "Cross-check outstanding withdrawals against ledger balances",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "responses": {
          "200": {"description": "Audit report"},
          "401": {"description": "Unauthorized"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/reports/export": {
      "get": {
        "summary": "Download the tax-office settlement CSV",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "parameters": [
          {
            "name": "X-Export-Passphrase",
            "in": "header",
            "required": true,
            "schema": {"type": "string"}
          },
          {
            "name": "mode",
            "in": "query",
            "required": false,
            "schema": {
              "type": "string",
              "enum": ["weekly", "full"]
            }
          },
          {
            "name": "region",
            "in": "query",
            "required": false,
            "schema": {
              "type": "string",
              "enum": ["korea", "japan", "us"]
            }
          },
          {
            "name": "week",
            "in": "query",
            "required": false,
            "schema": {
              "type": "string",
              "format": "date"
            }
          }
        ],
        "responses": {
          "200": {"description": "CSV file"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"},
          "403": {"description": "Export passphrase rejected"}
        }
      }
    },
    "/reports/weekly-dispatch": {
      "post": {
        "summary": "Push the weekly settlement summary to the works channel",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "responses": {
          "200": {"description": "Summary dispatched"},
          "401": {"description": "Unauthorized"},
          "500": {"description": "Server error"}
        }
      }
    }
  },
  "components": {
    "securitySchemes": {
      "BasicAuth": {
        "type": "http",
        "scheme": "basic"
      }
    }
  }
}`
