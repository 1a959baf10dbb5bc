package openai

const normalizePromptTemplate = `Normalize this search query to the standard English scientific or common supplement name.
Rules:
1. Translate to English if in another language (e.g. "Creatina" -> "Creatine").
2. Return the primary active ingredient if it's a brand or complex term.
3. If it's a symptom/goal (e.g. "para dormir"), return the most evidence-backed supplement for it (e.g. "Melatonin").
4. Return ONLY the term, nothing else.

Query: "%s"

Normalization:`

const expandPromptTemplate = `You are a supplement and nutrition expert. Given a supplement search query, provide alternative search terms that might match the same supplement.

Query: "%s"

Provide:
1. English translation (if query is in another language)
2. The full scientific name (if it's an abbreviation)
3. Common alternative names
4. The original query

Return ONLY a JSON array of strings, ordered by relevance. Maximum %d terms.

Examples:
- "NAC" -> ["N-Acetyl Cysteine", "N-Acetylcysteine", "NAC", "Acetylcysteine"]
- "CoQ10" -> ["Coenzyme Q10", "Ubiquinone", "CoQ10", "Ubidecarenone"]
- "Vitamin D" -> ["Vitamin D", "Cholecalciferol", "Vitamin D3"]
- "peptidos bioactivos" -> ["bioactive peptides", "bioactive peptide", "peptidos bioactivos"]

Output only the JSON array, nothing else.`
