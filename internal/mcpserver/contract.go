package mcpserver

const rulesURI = "libris://catalog-rules"

// CatalogRules describes how submitted catalog fields are checked and
// stored, for LLM consumers creating or updating records.
const CatalogRules = `# Libris Catalog Field Rules

Every submitted value is trimmed before it is checked. After checking, the
characters ` + "`" + `& < > " ' / \` + "`" + ` and the backtick are replaced with HTML
entities, and the escaped value is what gets stored.

## Genre

| Field | Rules |
|---|---|
| name | required. On update it must also be alphanumeric. |

Creating a genre whose name already exists returns the existing genre.

## Author

| Field | Rules |
|---|---|
| first_name | required, at most 100 characters, alphanumeric |
| family_name | required, at most 100 characters, alphanumeric |
| date_of_birth | optional ISO-8601 date (YYYY-MM-DD) |
| date_of_death | optional ISO-8601 date (YYYY-MM-DD) |

## Book

| Field | Rules |
|---|---|
| title | required |
| author | required, author id |
| summary | required |
| isbn | required |
| genre | zero or more genre ids |

## BookInstance (a physical copy)

| Field | Rules |
|---|---|
| book | required, book id |
| imprint | required |
| status | optional, one of Available, Maintenance, Loaned, Reserved. Defaults to Maintenance. |
| due_back | optional ISO-8601 date |

## Deletion

- A genre cannot be deleted while a book is tagged with it.
- An author cannot be deleted while they have books.
- A book cannot be deleted while copies of it exist.
- Deleting something that no longer exists succeeds.
`
