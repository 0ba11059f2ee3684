/*
gopg-anonymise

A tool for anonymising the columns of a postgresql database in place,
using column providers and exclusions set out in a schema toml file. A
SQLite database file can be anonymised the same way.

Each table in the schema is read in pages of chunk_size rows. The values
of the configured columns are replaced by the output of their providers,
and the new values are copied into a temporary staging table. Once the
whole table has been read the staging table is indexed on the primary key
and merged back into the table with a single UPDATE, and the transaction
is committed. A failure anywhere rolls the table back untouched.

Overview

Tables listed under truncate are emptied first. Tables are then
anonymised one after the other, or with --parallel one connection per
table at once; in parallel mode every table must declare its primary key.
SQLite databases are always anonymised one table at a time.

Use --dry-run to see a sample of up to 100 anonymised rows per table
(with -vv) without changing anything.

Running the programme

	Usage:
	  gopg-anonymise : anonymise a database in place.

	Application Options:
	  -v, --verbose         increase verbosity, repeat for more
	  -l, --list-providers  show the available providers
	      --schema=         anonymisation schema toml file (default: schema.toml)
	      --driver=[postgres|sqlite] database driver (default: postgres)
	      --dbname=         database name, or database file for sqlite
	      --user=           database user
	      --password=       database password
	      --host=           database host (default: localhost)
	      --port=           database port (default: 5432)
	      --dry-run         sample and show the changes without writing them
	      --dump-file=      pg_dump the anonymised database to this file
	      --dump-options=   options passed to pg_dump (default: --format custom --compress 9)
	      --init-sql=       sql run on every new connection
	      --parallel        anonymise tables in parallel, one connection each
	      --workers=        limit of tables anonymised at once with --parallel
	      --metrics-url=    prometheus pushgateway to push run metrics to

An example schema file

Environment variables written as $NAME or ${NAME} are substituted before
the file is parsed; unset variables are left as written.

	truncate = ["django_session"]

	[[tables]]
	name = "auth_user"
	primary_key = "id"
	chunk_size = 5000
	# optional sql predicate limiting the rows anonymised
	search = "id > 1"

	  [[tables.fields]]
	  column = "first_name"
	  provider = "fake.first_name"

	  [[tables.fields]]
	  column = "last_name"
	  provider = { name = "set", value = "Bar" }

	  [[tables.fields]]
	  column = "email"
	  provider = { name = "md5" }
	  append = "@localhost"

	  # leave the email of example.com users alone
	  [[tables.fields.excludes]]
	  column = "email"
	  patterns = ['\S[^@]*@example\.com']

	  # excludes at table level apply to every field of the table
	  [[tables.excludes]]
	  column = "username"
	  patterns = ["^admin$"]

Providers

- set: the fixed value of the "value" parameter

- clear: NULL

- md5: the md5 hash of the value; with as_number = true a number of
  as_number_length (default 8) digits instead

- xxh3: the xxh3 hash of the value

- uuid4: a new uuid

- choice: one of the "values" list, at random

- mask: the value with every character replaced by "sign" (default X)

- partial_mask: as mask, keeping unmasked_left and unmasked_right
  characters (default 1 each)

- file: successive lines of the file named by "source", cycling once
  the file is exhausted

- fake.<category>: synthetic data, eg fake.first_name, fake.email,
  fake.address; fake.unique.<category> never repeats a value

Exclusion patterns are regular expressions searched for anywhere in the
value of their column. A field is left unchanged for every row in which
one of its exclusions, or one of the table's exclusions, matches.
Exclusions are matched against the row as read from the database, so a
value written by an earlier field never changes which rows a later field
skips. Exclusion columns should be text; other types are matched on their
text form, with uuids in their usual hyphenated form.

Licence

This software is provided under an MIT licence.

*/

package main
