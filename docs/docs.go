// Package docs holds the OpenAPI description of the storefront REST API served
// at /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "schemes": {{ marshal .Schemes }},
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "session": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "paths": {
        "/register": {
            "post": {
                "tags": ["auth"], "summary": "Create an account and sign in",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Credentials"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/User"}}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/login": {
            "post": {
                "tags": ["auth"], "summary": "Sign in",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Credentials"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}, "401": {"$ref": "#/responses/Error"}}
            }
        },
        "/logout": {
            "post": {"tags": ["auth"], "summary": "Clear the session cookie", "responses": {"200": {"description": "OK"}}}
        },
        "/user": {
            "get": {
                "tags": ["auth"], "summary": "Current user", "security": [{"session": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}, "401": {"$ref": "#/responses/Error"}}
            }
        },
        "/categories": {
            "get": {"tags": ["catalog"], "summary": "List categories", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["catalog"], "summary": "Create a category", "security": [{"session": []}],
                "responses": {"201": {"description": "Created"}, "400": {"$ref": "#/responses/Error"}, "403": {"$ref": "#/responses/Error"}}
            }
        },
        "/categories/{idOrSlug}": {
            "get": {
                "tags": ["catalog"], "summary": "Get a category by id or slug",
                "parameters": [{"in": "path", "name": "idOrSlug", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"$ref": "#/responses/Error"}}
            }
        },
        "/products": {
            "get": {
                "tags": ["catalog"], "summary": "List products",
                "parameters": [
                    {"in": "query", "name": "categoryId", "type": "integer"},
                    {"in": "query", "name": "minPrice", "type": "number"},
                    {"in": "query", "name": "maxPrice", "type": "number"},
                    {"in": "query", "name": "condition", "type": "string"},
                    {"in": "query", "name": "brand", "type": "string"},
                    {"in": "query", "name": "marketplace", "type": "string"},
                    {"in": "query", "name": "search", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Product"}}}}
            },
            "post": {
                "tags": ["catalog"], "summary": "Create a product", "security": [{"session": []}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Product"}}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/products/{id}": {
            "get": {
                "tags": ["catalog"], "summary": "Get a product with its inventory",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Product"}}, "404": {"$ref": "#/responses/Error"}}
            },
            "patch": {
                "tags": ["catalog"], "summary": "Update a product", "security": [{"session": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"$ref": "#/responses/Error"}}
            },
            "delete": {
                "tags": ["catalog"], "summary": "Delete a product", "security": [{"session": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"$ref": "#/responses/Error"}}
            }
        },
        "/inventory/{productId}": {
            "get": {
                "tags": ["inventory"], "summary": "Stock level of a product",
                "parameters": [{"in": "path", "name": "productId", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Inventory"}}, "404": {"$ref": "#/responses/Error"}}
            },
            "patch": {
                "tags": ["inventory"], "summary": "Set the stock level", "security": [{"session": []}],
                "parameters": [
                    {"in": "path", "name": "productId", "type": "integer", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"quantity": {"type": "integer", "minimum": 0}}}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Inventory"}}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/cart": {
            "get": {"tags": ["cart"], "summary": "Cart lines with products", "security": [{"session": []}], "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["cart"], "summary": "Add a product to the cart", "security": [{"session": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"productId": {"type": "integer"}, "quantity": {"type": "integer", "minimum": 1}}}}],
                "responses": {"201": {"description": "Created"}, "400": {"$ref": "#/responses/Error"}}
            },
            "delete": {"tags": ["cart"], "summary": "Empty the cart", "security": [{"session": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/cart/{productId}": {
            "patch": {
                "tags": ["cart"], "summary": "Change a line quantity", "security": [{"session": []}],
                "parameters": [{"in": "path", "name": "productId", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"$ref": "#/responses/Error"}}
            },
            "delete": {
                "tags": ["cart"], "summary": "Remove a line", "security": [{"session": []}],
                "parameters": [{"in": "path", "name": "productId", "type": "integer", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/orders": {
            "get": {"tags": ["orders"], "summary": "Orders of the current user", "security": [{"session": []}], "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["orders"], "summary": "Check out the cart", "security": [{"session": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PlaceOrder"}}],
                "responses": {"201": {"description": "Created"}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/orders/{id}": {
            "get": {
                "tags": ["orders"], "summary": "Order with its items", "security": [{"session": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"$ref": "#/responses/Error"}, "404": {"$ref": "#/responses/Error"}}
            }
        },
        "/orders/{id}/history": {
            "get": {
                "tags": ["orders"], "summary": "Audit trail of an order", "security": [{"session": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/orders/{id}/status": {
            "patch": {
                "tags": ["orders"], "summary": "Move an order to a new status", "security": [{"session": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"status": {"type": "string"}}}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/create-payment-intent": {
            "post": {
                "tags": ["payments"], "summary": "Create a payment intent", "security": [{"session": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"amount": {"type": "number"}}}}],
                "responses": {"200": {"description": "OK"}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/chatbot/message": {
            "post": {
                "tags": ["misc"], "summary": "Canned support reply",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"message": {"type": "string"}}}}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/marketplace/{marketplace}/status": {
            "get": {
                "tags": ["misc"], "summary": "Marketplace sync status",
                "parameters": [{"in": "path", "name": "marketplace", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"$ref": "#/responses/Error"}}
            }
        }
    },
    "responses": {
        "Error": {"description": "Error", "schema": {"$ref": "#/definitions/Error"}}
    },
    "definitions": {
        "Error": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "Credentials": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "User": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "username": {"type": "string"}, "isAdmin": {"type": "boolean"}}
        },
        "Product": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "number"},
                "imageUrl": {"type": "string"},
                "condition": {"type": "string"},
                "categoryId": {"type": "integer"},
                "brand": {"type": "string"},
                "stock": {"type": "integer"}
            }
        },
        "Inventory": {
            "type": "object",
            "properties": {"productId": {"type": "integer"}, "quantity": {"type": "integer"}, "lastUpdated": {"type": "string", "format": "date-time"}}
        },
        "Address": {
            "type": "object",
            "required": ["fullName", "addressLine1", "city", "state", "postalCode", "country", "phone"],
            "properties": {
                "fullName": {"type": "string"},
                "addressLine1": {"type": "string"},
                "addressLine2": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "postalCode": {"type": "string"},
                "country": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "PlaceOrder": {
            "type": "object",
            "properties": {
                "shippingAddress": {"$ref": "#/definitions/Address"},
                "billingAddress": {"$ref": "#/definitions/Address"},
                "paymentMethod": {"type": "string"},
                "deliveryMethod": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo is served by gin-swagger as doc.json.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Catalog, cart, checkout and order management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
